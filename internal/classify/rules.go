package classify

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/payroll"
)

// Rules is the classification table: which account each kind of amount
// goes to.
type Rules struct {
	Accounts AccountMap
	// SplitWithholdings credits IRT, INSS and advances to their own
	// liability accounts. When false the whole payroll cost is credited to
	// the staff payable account in a single line.
	SplitWithholdings bool
}

func DefaultRules() Rules {
	return Rules{Accounts: DefaultAccountMap(), SplitWithholdings: true}
}

func debit(role, account string, amount decimal.Decimal) Line {
	return Line{Role: role, Account: account, Debit: amount}
}

func credit(role, account string, amount decimal.Decimal) Line {
	return Line{Role: role, Account: account, Credit: amount}
}

// Classify produces one result per classifiable line of src.
func (r Rules) Classify(src Source) []Result {
	switch s := src.(type) {
	case SalesSource:
		return r.sales(s.Invoice)
	case PurchaseSource:
		return r.purchase(s.Purchase)
	case PayrollSource:
		return []Result{r.payroll(s.Run)}
	case PayrollPaymentSource:
		return []Result{r.payrollPayment(s.Run)}
	default:
		return []Result{Unresolved(Key{}, "unsupported source %T", src)}
	}
}

// ClassifyItem resolves a single line of a source again.
func (r Rules) ClassifyItem(src Source, itemID string) Result {
	for _, res := range r.Classify(src) {
		if res.Key.ItemID == itemID {
			return res
		}
	}
	return Unresolved(Key{Kind: src.Kind(), DocumentID: src.DocumentID(), ItemID: itemID},
		"item %s not found in document %s", itemID, src.DocumentID())
}

func (r Rules) revenueAccount(it documents.Item) string {
	if it.Rubrica != "" {
		return it.Rubrica
	}
	if it.Kind == documents.KindProduct {
		return r.Accounts.ProductRevenue
	}
	return r.Accounts.ServiceRevenue
}

func (r Rules) returnsAccount(it documents.Item) string {
	if it.Kind == documents.KindProduct {
		return r.Accounts.ProductReturns
	}
	return r.Accounts.ServiceReturns
}

func (r Rules) sales(inv documents.Invoice) []Result {
	docKey := Key{Kind: SalesSource{}.Kind(), DocumentID: inv.ID}
	if inv.Status != documents.InvoiceCertified {
		return []Result{Unresolved(docKey, "invoice %s is %s, only certified invoices are posted", inv.Number, inv.Status)}
	}
	if len(inv.Items) == 0 {
		return []Result{Unresolved(docKey, "invoice %s has no items", inv.Number)}
	}

	client := r.Accounts.ClientAccount(inv.ClientID)
	out := make([]Result, 0, len(inv.Items))
	for _, it := range inv.Items {
		key := docKey
		key.ItemID = it.ID
		base, tax := it.Base(), it.Tax()
		if !base.IsPositive() {
			out = append(out, Unresolved(key, "item %q has no amount", it.Description))
			continue
		}
		total := base.Add(tax)

		e := Entry{
			Key:         key,
			Date:        inv.Date,
			Description: fmt.Sprintf("%s %s - %s", inv.Type, inv.Number, it.Description),
			Party:       inv.ClientName,
			Status:      StatusPending,
		}
		if inv.IsCreditNote() {
			e.Lines = []Line{
				debit(RoleDebit, r.returnsAccount(it), base),
				credit(RoleCredit, client, total),
			}
			if tax.IsPositive() {
				e.Lines = append(e.Lines, debit(RoleVAT, r.Accounts.OutputVAT, tax))
			}
		} else {
			e.Lines = []Line{
				debit(RoleDebit, client, total),
				credit(RoleCredit, r.revenueAccount(it), base),
			}
			if tax.IsPositive() {
				e.Lines = append(e.Lines, credit(RoleVAT, r.Accounts.OutputVAT, tax))
			}
		}
		out = append(out, Ok(e))
	}
	return out
}

func (r Rules) purchase(p documents.Purchase) []Result {
	docKey := Key{Kind: PurchaseSource{}.Kind(), DocumentID: p.ID}
	if p.Status == documents.PurchaseCancelled {
		return []Result{Unresolved(docKey, "purchase %s is cancelled", p.Number)}
	}
	if len(p.Items) == 0 {
		return []Result{Unresolved(docKey, "purchase %s has no items", p.Number)}
	}

	taxes := p.ItemTaxes()
	out := make([]Result, 0, len(p.Items))
	for i, it := range p.Items {
		key := docKey
		key.ItemID = it.ID
		base, tax := it.Base(), taxes[i]
		if !base.IsPositive() {
			out = append(out, Unresolved(key, "item %q has no amount", it.Description))
			continue
		}
		cost := it.Rubrica
		if cost == "" {
			cost = r.Accounts.Cost
		}
		e := Entry{
			Key:         key,
			Date:        p.Date,
			Description: fmt.Sprintf("Compra %s - %s", p.Number, it.Description),
			Party:       p.SupplierName,
			Status:      StatusPending,
			Lines: []Line{
				debit(RoleDebit, cost, base),
				credit(RoleCredit, r.Accounts.Supplier, base.Add(tax)),
			},
		}
		if tax.IsPositive() {
			e.Lines = append(e.Lines, debit(RoleVAT, r.Accounts.InputVAT, tax))
		}
		out = append(out, Ok(e))
	}
	return out
}

func (r Rules) payroll(run payroll.Run) Result {
	key := Key{Kind: PayrollSource{}.Kind(), DocumentID: run.ID}
	if run.Status != payroll.RunCertified {
		return Unresolved(key, "payroll %s is not certified", periodLabel(run.Year, run.Month))
	}
	t := run.Totals
	cost := t.Gross.Add(t.Subsidies)
	if !cost.IsPositive() {
		return Unresolved(key, "payroll %s has no amount", periodLabel(run.Year, run.Month))
	}

	e := Entry{
		Key:         key,
		Date:        periodEnd(run.Year, run.Month),
		Description: "Processamento salarial " + periodLabel(run.Year, run.Month),
		Status:      StatusPending,
		Lines:       []Line{debit(RoleDebit, r.Accounts.StaffCost, cost)},
	}
	if !r.SplitWithholdings {
		e.Lines = append(e.Lines, credit(RoleCredit, r.Accounts.StaffPayable, cost))
		return Ok(e)
	}
	e.Lines = append(e.Lines,
		credit(RoleCredit, r.Accounts.StaffPayable, t.Net),
		credit(RoleIRT, r.Accounts.IRTPayable, t.IRT),
		credit(RoleINSS, r.Accounts.INSSPayable, t.INSS),
		credit(RoleAdvances, r.Accounts.StaffAdvances, t.Advances),
	)
	if t.EmployerINSS.IsPositive() {
		e.Lines = append(e.Lines,
			debit(RoleEmployerINSS, r.Accounts.EmployerINSSCost, t.EmployerINSS),
			credit(RoleEmployerINSSPayable, r.Accounts.INSSPayable, t.EmployerINSS),
		)
	}
	return Ok(e)
}

func (r Rules) payrollPayment(run payroll.Run) Result {
	key := Key{Kind: PayrollPaymentSource{}.Kind(), DocumentID: run.ID}
	if run.Status != payroll.RunCertified {
		return Unresolved(key, "payroll %s is not certified", periodLabel(run.Year, run.Month))
	}
	if !run.Totals.Net.IsPositive() {
		return Unresolved(key, "payroll %s has no net pay", periodLabel(run.Year, run.Month))
	}
	return Ok(Entry{
		Key:         key,
		Date:        periodEnd(run.Year, run.Month),
		Description: "Pagamento de salários " + periodLabel(run.Year, run.Month),
		Status:      StatusPending,
		Lines: []Line{
			debit(RoleDebit, r.Accounts.StaffPayable, run.Totals.Net),
			credit(RoleCredit, r.Accounts.Bank, run.Totals.Net),
		},
	})
}
