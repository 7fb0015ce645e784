// Package export writes reports as .xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/payroll"
	"github.com/simonvc/pgcledger/internal/vat"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheet is a single-sheet workbook under construction.
type sheet struct {
	f      *excelize.File
	name   string
	row    int
	header int
	money  int
}

func newSheet(name string, widths map[string]float64) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	numFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}
	for col, w := range widths {
		if err := f.SetColWidth(name, col, col, w); err != nil {
			return nil, err
		}
	}
	return &sheet{f: f, name: name, header: header, money: moneyStyle}, nil
}

func (s *sheet) cell(col int) string {
	c, _ := excelize.CoordinatesToCellName(col, s.row)
	return c
}

func (s *sheet) title(text string) error {
	s.row++
	if err := s.f.SetCellValue(s.name, s.cell(1), text); err != nil {
		return err
	}
	s.row++
	return nil
}

func (s *sheet) headerRow(cols ...string) error {
	s.row++
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = c
	}
	if err := s.f.SetSheetRow(s.name, s.cell(1), &vals); err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, s.cell(1), s.cell(len(cols)), s.header)
}

// add writes a row. Decimal values become numbers with the money format.
func (s *sheet) add(vals ...any) error {
	s.row++
	out := make([]any, len(vals))
	for i, v := range vals {
		if dv, ok := v.(decimal.Decimal); ok {
			out[i] = dv.InexactFloat64()
			continue
		}
		out[i] = v
	}
	if err := s.f.SetSheetRow(s.name, s.cell(1), &out); err != nil {
		return err
	}
	for i, v := range vals {
		if _, ok := v.(decimal.Decimal); ok {
			if err := s.f.SetCellStyle(s.name, s.cell(i+1), s.cell(i+1), s.money); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *sheet) write(w io.Writer) error {
	defer s.f.Close()
	if _, err := s.f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Balancete writes the trial balance.
func Balancete(w io.Writer, b *ledger.Balancete) error {
	s, err := newSheet("Balancete", map[string]float64{"A": 14, "B": 44, "C": 16, "D": 16, "E": 16, "F": 16, "G": 16, "H": 16})
	if err != nil {
		return err
	}
	if err := s.title(fmt.Sprintf("Balancete %d, meses %02d a %02d", b.Year, b.FromMonth, b.ToMonth)); err != nil {
		return err
	}
	if err := s.headerRow("Conta", "Descrição", "Abertura D", "Abertura C", "Débito", "Crédito", "Saldo D", "Saldo C"); err != nil {
		return err
	}
	for _, l := range b.Lines {
		if err := s.add(l.Code, l.Description, l.OpeningDebit, l.OpeningCredit, l.Debit, l.Credit, l.BalanceDebit, l.BalanceCredit); err != nil {
			return err
		}
	}
	if err := s.add("Total", "", b.TotalOpeningDebit, b.TotalOpeningCredit, b.TotalDebit, b.TotalCredit, b.TotalBalanceDebit, b.TotalBalanceCredit); err != nil {
		return err
	}
	return s.write(w)
}

// Extract writes the movements of one account.
func Extract(w io.Writer, ex *ledger.Extract) error {
	s, err := newSheet("Extrato", map[string]float64{"A": 12, "B": 48, "C": 14, "D": 16, "E": 16, "F": 16})
	if err != nil {
		return err
	}
	if err := s.title(fmt.Sprintf("Extrato %s %s, %d", ex.Account.Code, ex.Account.Description, ex.Year)); err != nil {
		return err
	}
	if err := s.headerRow("Data", "Descrição", "Conta", "Débito", "Crédito", "Saldo"); err != nil {
		return err
	}
	for _, l := range ex.Lines {
		if err := s.add(l.Date.Format("2006-01-02"), l.Description, l.AccountCode, l.Debit, l.Credit, l.Balance); err != nil {
			return err
		}
	}
	if err := s.add("", "Total", "", ex.TotalDebit, ex.TotalCredit, ex.Balance); err != nil {
		return err
	}
	return s.write(w)
}

// Payroll writes the salary slips of a run.
func Payroll(w io.Writer, run *payroll.Run) error {
	s, err := newSheet("Folha", map[string]float64{"A": 30})
	if err != nil {
		return err
	}
	if err := s.title(fmt.Sprintf("Folha de salários %04d-%02d", run.Year, run.Month)); err != nil {
		return err
	}
	if err := s.headerRow("Funcionário", "Base", "Bónus", "Abonos", "Faltas", "Bruto", "Subsídios", "INSS", "IRT", "Adiantamentos", "Líquido", "INSS entidade"); err != nil {
		return err
	}
	for _, sl := range run.Slips {
		if err := s.add(sl.EmployeeName, sl.BaseSalary, sl.Bonuses, sl.Allowances, sl.Absences, sl.Gross,
			sl.Subsidies, sl.INSS, sl.IRT, sl.Advances, sl.Net, sl.EmployerINSS); err != nil {
			return err
		}
	}
	t := run.Totals
	if err := s.add("Total", "", "", "", "", t.Gross, t.Subsidies, t.INSS, t.IRT, t.Advances, t.Net, t.EmployerINSS); err != nil {
		return err
	}
	return s.write(w)
}

// VAT writes a list of settlements, one per row.
func VAT(w io.Writer, settlements []vat.Settlement) error {
	s, err := newSheet("IVA", map[string]float64{"A": 10, "I": 14})
	if err != nil {
		return err
	}
	if err := s.title("Apuramento do IVA"); err != nil {
		return err
	}
	if err := s.headerRow("Período", "IVA liquidado", "Ajuste vendas", "IVA dedutível", "Ajuste compras", "Total crédito", "Total débito", "Saldo", "Situação"); err != nil {
		return err
	}
	for _, st := range settlements {
		if err := s.add(fmt.Sprintf("%04d-%02d", st.Year, st.Month), st.OutputVAT, st.SalesAdjust, st.InputVAT,
			st.PurchaseAdjust, st.TotalCredit, st.TotalDebit, st.Balance, st.Label); err != nil {
			return err
		}
	}
	return s.write(w)
}
