package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/money"
	"github.com/simonvc/pgcledger/internal/tax"
)

// SalarySlip is the computed pay of one employee for one month.
type SalarySlip struct {
	EmployeeID     string          `json:"employee_id"`
	EmployeeName   string          `json:"employee_name"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	BaseSalary     decimal.Decimal `json:"base_salary"`
	Bonuses        decimal.Decimal `json:"bonuses"`
	Allowances     decimal.Decimal `json:"allowances"`
	Absences       decimal.Decimal `json:"absences"`
	Advances       decimal.Decimal `json:"advances"`
	Gross          decimal.Decimal `json:"gross"`
	Subsidies      decimal.Decimal `json:"subsidies"`
	INSS           decimal.Decimal `json:"inss"`
	IRT            decimal.Decimal `json:"irt"`
	EmployerINSS   decimal.Decimal `json:"employer_inss"`
	Net            decimal.Decimal `json:"net"`
	TransactionIDs []string        `json:"transaction_ids"`
}

// ValidPeriod checks a year/month pair.
func ValidPeriod(year, month int) error {
	if year < 1900 || year > 9999 || month < 1 || month > 12 {
		return fmt.Errorf("%w: %04d-%02d", ErrInvalidPeriod, year, month)
	}
	return nil
}

// Compute builds the salary slip of emp for the month. Only transactions of
// the employee that are unprocessed and dated inside the month count. The
// inputs are not modified, so calling it again with the same data gives the
// same slip.
func Compute(emp Employee, txns []HrTransaction, year, month int, calc *tax.Calculator) SalarySlip {
	if calc == nil {
		calc = tax.Default()
	}
	s := SalarySlip{
		EmployeeID:     emp.ID,
		EmployeeName:   emp.Name,
		Year:           year,
		Month:          month,
		BaseSalary:     emp.BaseSalary,
		TransactionIDs: []string{},
	}
	for _, t := range txns {
		if t.EmployeeID != emp.ID || t.Processed || !t.InPeriod(year, month) {
			continue
		}
		switch t.Type {
		case TxBonus:
			s.Bonuses = s.Bonuses.Add(t.Amount)
		case TxAllowance:
			s.Allowances = s.Allowances.Add(t.Amount)
		case TxAbsence:
			s.Absences = s.Absences.Add(t.Amount)
		case TxAdvance:
			s.Advances = s.Advances.Add(t.Amount)
		default:
			continue
		}
		s.TransactionIDs = append(s.TransactionIDs, t.ID)
	}

	s.Gross = money.Round(s.BaseSalary.Add(s.Bonuses).Add(s.Allowances).Sub(s.Absences))
	s.Subsidies = money.Round(emp.Subsidies())
	s.INSS, s.IRT = calc.Withholdings(s.Gross)
	s.EmployerINSS = calc.INSSEntity(s.Gross)
	s.Net = s.Gross.Add(s.Subsidies).Sub(s.INSS).Sub(s.IRT).Sub(s.Advances)
	return s
}

type RunStatus string

const (
	RunPreview   RunStatus = "PREVIEW"
	RunCertified RunStatus = "CERTIFIED"
)

// Totals sums the slips of a run.
type Totals struct {
	Gross        decimal.Decimal `json:"gross"`
	Subsidies    decimal.Decimal `json:"subsidies"`
	INSS         decimal.Decimal `json:"inss"`
	IRT          decimal.Decimal `json:"irt"`
	EmployerINSS decimal.Decimal `json:"employer_inss"`
	Advances     decimal.Decimal `json:"advances"`
	Net          decimal.Decimal `json:"net"`
}

// Run is the payroll of a month. A preview run has no ID; certification
// assigns one and freezes the slips.
type Run struct {
	ID          string       `json:"id,omitempty"`
	Year        int          `json:"year"`
	Month       int          `json:"month"`
	Status      RunStatus    `json:"status"`
	Slips       []SalarySlip `json:"slips"`
	Totals      Totals       `json:"totals"`
	CertifiedAt time.Time    `json:"certified_at,omitempty"`
}

// Preview computes the slips of every active employee for the month.
func Preview(employees []Employee, txns []HrTransaction, year, month int, calc *tax.Calculator) (*Run, error) {
	if err := ValidPeriod(year, month); err != nil {
		return nil, err
	}
	run := &Run{Year: year, Month: month, Status: RunPreview, Slips: []SalarySlip{}}
	for _, e := range employees {
		if !e.Active {
			continue
		}
		run.Slips = append(run.Slips, Compute(e, txns, year, month, calc))
	}
	run.Totals = SumSlips(run.Slips)
	return run, nil
}

// SumSlips adds up the amounts of the slips.
func SumSlips(slips []SalarySlip) Totals {
	var t Totals
	for _, s := range slips {
		t.Gross = t.Gross.Add(s.Gross)
		t.Subsidies = t.Subsidies.Add(s.Subsidies)
		t.INSS = t.INSS.Add(s.INSS)
		t.IRT = t.IRT.Add(s.IRT)
		t.EmployerINSS = t.EmployerINSS.Add(s.EmployerINSS)
		t.Advances = t.Advances.Add(s.Advances)
		t.Net = t.Net.Add(s.Net)
	}
	return t
}

// TransactionIDs lists every HR transaction consumed by the run.
func (r *Run) TransactionIDs() []string {
	var ids []string
	for _, s := range r.Slips {
		ids = append(ids, s.TransactionIDs...)
	}
	return ids
}
