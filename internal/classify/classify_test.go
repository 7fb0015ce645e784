package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/payroll"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testChart(t *testing.T) *ledger.Chart {
	t.Helper()
	c, err := ledger.NewChart(ledger.DefaultChart())
	require.NoError(t, err)
	return c
}

func invoiceFT() documents.Invoice {
	return documents.Invoice{
		ID: "inv-1", Number: "FT 2024/7", Type: documents.TypeFatura,
		ClientID: "CLI-0042", ClientName: "Sonangol", Status: documents.InvoiceCertified,
		Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Items: []documents.Item{
			{ID: "it-1", Description: "Consultoria", Kind: documents.KindService, Quantity: d("1"), UnitPrice: d("10000"), TaxRate: d("14")},
		},
	}
}

func line(t *testing.T, e *Entry, role string) *Line {
	t.Helper()
	l, ok := e.Line(role)
	require.True(t, ok, "missing line %s", role)
	return l
}

func TestClientAccount(t *testing.T) {
	m := DefaultAccountMap()
	assert.Equal(t, "31.1.2.1.42", m.ClientAccount("CLI-0042"))
	assert.Equal(t, "31.1.2.1.7", m.ClientAccount("7"))
	assert.Equal(t, "31.1.2.1.1", m.ClientAccount(""))
	assert.Equal(t, "31.1.2.1.1", m.ClientAccount("abc"))
}

func TestAccountMapValidate(t *testing.T) {
	m := DefaultAccountMap()
	require.NoError(t, m.Validate(testChart(t)))

	m.Bank = "4x"
	assert.ErrorIs(t, m.Validate(nil), ErrInvalidMapping)

	m = DefaultAccountMap()
	m.Bank = "43.9"
	assert.ErrorIs(t, m.Validate(testChart(t)), ErrUnknownAccount)
}

func TestClassifySalesInvoice(t *testing.T) {
	res := DefaultRules().Classify(SalesSource{Invoice: invoiceFT()})
	require.Len(t, res, 1)
	require.True(t, res[0].IsOk())
	e := res[0].Entry

	dr := line(t, e, RoleDebit)
	assert.Equal(t, "31.1.2.1.42", dr.Account)
	assert.True(t, dr.Debit.Equal(d("11400")))

	cr := line(t, e, RoleCredit)
	assert.Equal(t, "62.1", cr.Account)
	assert.True(t, cr.Credit.Equal(d("10000")))

	vat := line(t, e, RoleVAT)
	assert.Equal(t, "34.5.3.1", vat.Account)
	assert.True(t, vat.Credit.Equal(d("1400")))

	debitTotal, creditTotal := e.Totals()
	assert.True(t, debitTotal.Equal(creditTotal))
}

func TestClassifySalesRubricaAndProduct(t *testing.T) {
	inv := invoiceFT()
	inv.Items = []documents.Item{
		{ID: "a", Description: "Peça", Kind: documents.KindProduct, Quantity: d("2"), UnitPrice: d("100")},
		{ID: "b", Description: "Aluguer", Kind: documents.KindService, Quantity: d("1"), UnitPrice: d("100"), Rubrica: "62.9"},
	}
	res := DefaultRules().Classify(SalesSource{Invoice: inv})
	require.Len(t, res, 2)
	assert.Equal(t, "61.1", line(t, res[0].Entry, RoleCredit).Account)
	assert.Equal(t, "62.9", line(t, res[1].Entry, RoleCredit).Account)
	_, hasVAT := res[0].Entry.Line(RoleVAT)
	assert.False(t, hasVAT)
}

func TestClassifyCreditNote(t *testing.T) {
	inv := invoiceFT()
	inv.Type = documents.TypeNotaCredito
	res := DefaultRules().Classify(SalesSource{Invoice: inv})
	require.True(t, res[0].IsOk())
	e := res[0].Entry

	assert.Equal(t, "62.9", line(t, e, RoleDebit).Account)
	assert.True(t, line(t, e, RoleDebit).Debit.Equal(d("10000")))
	assert.Equal(t, "31.1.2.1.42", line(t, e, RoleCredit).Account)
	assert.True(t, line(t, e, RoleCredit).Credit.Equal(d("11400")))
	assert.True(t, line(t, e, RoleVAT).Debit.Equal(d("1400")))

	_, err := ToTransaction(*e)
	assert.NoError(t, err)
}

func TestClassifyDraftInvoiceIsUnresolved(t *testing.T) {
	inv := invoiceFT()
	inv.Status = documents.InvoiceDraft
	res := DefaultRules().Classify(SalesSource{Invoice: inv})
	require.Len(t, res, 1)
	assert.False(t, res[0].IsOk())
	assert.ErrorIs(t, res[0].Err(), ErrUnresolvedEntry)
}

func TestClassifyPurchaseHeaderTax(t *testing.T) {
	p := documents.Purchase{
		ID: "p-1", Number: "FC 12", SupplierName: "Fornecedor", Status: documents.PurchasePaid, Tax: d("140"),
		Items: []documents.Item{
			{ID: "a", Description: "Papel", Quantity: d("1"), UnitPrice: d("600")},
			{ID: "b", Description: "Toner", Quantity: d("1"), UnitPrice: d("400"), Rubrica: "22"},
		},
	}
	res := DefaultRules().Classify(PurchaseSource{Purchase: p})
	require.Len(t, res, 2)

	a := res[0].Entry
	assert.Equal(t, "71.1", line(t, a, RoleDebit).Account)
	assert.True(t, line(t, a, RoleVAT).Debit.Equal(d("84")))
	assert.Equal(t, "32.1", line(t, a, RoleCredit).Account)
	assert.True(t, line(t, a, RoleCredit).Credit.Equal(d("684")))

	b := res[1].Entry
	assert.Equal(t, "22", line(t, b, RoleDebit).Account)
	assert.True(t, line(t, b, RoleVAT).Debit.Equal(d("56")))
	assert.Equal(t, "34.5.2.1", line(t, b, RoleVAT).Account)
}

func certifiedRun() payroll.Run {
	return payroll.Run{
		ID: "run-1", Year: 2024, Month: 3, Status: payroll.RunCertified,
		Totals: payroll.Totals{
			Gross: d("150000"), Subsidies: d("15000"), INSS: d("4500"), IRT: d("5915"),
			EmployerINSS: d("12000"), Advances: d("10000"), Net: d("144585"),
		},
	}
}

func TestClassifyPayroll(t *testing.T) {
	res := DefaultRules().Classify(PayrollSource{Run: certifiedRun()})
	require.True(t, res[0].IsOk())
	e := res[0].Entry

	assert.True(t, line(t, e, RoleDebit).Debit.Equal(d("165000")))
	assert.Equal(t, "72.1", line(t, e, RoleDebit).Account)
	assert.True(t, line(t, e, RoleCredit).Credit.Equal(d("144585")))
	assert.Equal(t, "34.3", line(t, e, RoleIRT).Account)
	assert.Equal(t, "34.8", line(t, e, RoleINSS).Account)
	assert.Equal(t, "36.2", line(t, e, RoleAdvances).Account)
	assert.True(t, line(t, e, RoleEmployerINSS).Debit.Equal(d("12000")))

	tx, err := ToTransaction(*e)
	require.NoError(t, err)
	assert.Len(t, tx.Entries, 7)
	assert.Equal(t, 31, tx.Date.Day())
}

func TestClassifyPayrollSingleLine(t *testing.T) {
	rules := DefaultRules()
	rules.SplitWithholdings = false
	res := rules.Classify(PayrollSource{Run: certifiedRun()})
	e := res[0].Entry
	require.Len(t, e.Lines, 2)
	assert.True(t, line(t, e, RoleCredit).Credit.Equal(d("165000")))
}

func TestClassifyPayrollPayment(t *testing.T) {
	res := DefaultRules().Classify(PayrollPaymentSource{Run: certifiedRun()})
	e := res[0].Entry
	assert.Equal(t, "36.1", line(t, e, RoleDebit).Account)
	assert.Equal(t, "43.1", line(t, e, RoleCredit).Account)
	assert.True(t, line(t, e, RoleCredit).Credit.Equal(d("144585")))

	run := certifiedRun()
	run.Status = payroll.RunPreview
	assert.False(t, DefaultRules().Classify(PayrollPaymentSource{Run: run})[0].IsOk())
}

type fakeCommitter struct {
	batch *Batch
	err   error
}

func (f *fakeCommitter) CommitClassification(_ context.Context, b *Batch) error {
	if f.err != nil {
		return f.err
	}
	f.batch = b
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	chart := testChart(t)
	s := NewSession(chart, DefaultRules(), nil, SalesSource{Invoice: invoiceFT()}, PayrollSource{Run: certifiedRun()})
	require.Len(t, s.Entries(), 2)
	assert.Empty(t, s.Unresolved())

	_, err := s.Post(context.Background(), &fakeCommitter{})
	assert.ErrorIs(t, err, ErrPendingEntries)

	salesKey := Key{Kind: ledger.SourceSales, DocumentID: "inv-1", ItemID: "it-1"}
	assert.ErrorIs(t, s.SetAccount(salesKey, RoleCredit, "62.7"), ErrUnknownAccount)
	assert.ErrorIs(t, s.SetAccount(salesKey, "bogus", "62.1"), ErrUnknownRole)
	require.NoError(t, s.SetAccount(salesKey, RoleCredit, "61.1"))

	unresolved := s.AutoClassify()
	assert.Empty(t, unresolved)
	for _, e := range s.Entries() {
		assert.Equal(t, StatusClassified, e.Status)
		if e.Key == salesKey {
			assert.Equal(t, "61.1", e.Lines[1].Account, "manual edit survives auto-classify")
		}
	}

	s.AutoClassify(salesKey)
	for _, e := range s.Entries() {
		if e.Key == salesKey {
			assert.Equal(t, "62.1", e.Lines[1].Account)
		}
	}

	failing := &fakeCommitter{err: errors.New("disk full")}
	_, err = s.Post(context.Background(), failing)
	require.Error(t, err)
	assert.Len(t, s.Entries(), 2)

	c := &fakeCommitter{}
	b, err := s.Post(context.Background(), c)
	require.NoError(t, err)
	assert.Len(t, b.Transactions, 2)
	require.Len(t, b.NewAccounts, 1)
	assert.Equal(t, "31.1.2.1.42", b.NewAccounts[0].Code)
	assert.Equal(t, "Sonangol", b.NewAccounts[0].Description)
	assert.ElementsMatch(t, []Key{
		{Kind: ledger.SourceSales, DocumentID: "inv-1"},
		{Kind: ledger.SourcePayroll, DocumentID: "run-1"},
	}, b.Processed)
	for _, tx := range b.Transactions {
		assert.NotEmpty(t, tx.ID)
		require.NoError(t, tx.Validate())
	}

	assert.Empty(t, s.Entries())
	assert.True(t, chart.Exists("31.1.2.1.42"))
	_, err = s.Post(context.Background(), c)
	assert.ErrorIs(t, err, ErrNothingToPost)
}

func TestSessionRejectsUnknownParent(t *testing.T) {
	rules := DefaultRules()
	rules.Accounts.ClientPrefix = "31.9.9"
	s := NewSession(testChart(t), rules, nil, SalesSource{Invoice: invoiceFT()})
	s.AutoClassify()
	_, err := s.Prepare()
	assert.ErrorIs(t, err, ErrUnknownAccount)
}
