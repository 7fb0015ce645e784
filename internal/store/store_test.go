package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/pgcledger/internal/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pgc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func date(y, m, day int) time.Time {
	return time.Date(y, time.Month(m), day, 0, 0, 0, 0, time.UTC)
}

func manual(day time.Time, desc string, lines ...ledger.Entry) *ledger.Transaction {
	return &ledger.Transaction{Date: day, Description: desc, Entries: lines}
}

func dr(code, amount string) ledger.Entry { return ledger.Entry{AccountCode: code, Debit: d(amount)} }
func cr(code, amount string) ledger.Entry { return ledger.Entry{AccountCode: code, Credit: d(amount)} }

func TestOpenSeedsChart(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chart, err := s.LoadChart(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(ledger.DefaultChart()), chart.Len())

	acct, err := s.GetAccount(ctx, "34.5.3.1")
	require.NoError(t, err)
	assert.Equal(t, "34.5.3", acct.ParentCode)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgc.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateAccount(context.Background(), &ledger.Account{Code: "43.1.1", Description: "BAI"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.GetAccount(context.Background(), "43.1.1")
	assert.NoError(t, err)
}

func TestAccountLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &ledger.Account{Code: "43.1.1", Description: "Banco BAI"}
	require.NoError(t, s.CreateAccount(ctx, a))
	assert.Equal(t, "43.1", a.ParentCode)

	err := s.CreateAccount(ctx, &ledger.Account{Code: "43.1.1", Description: "again"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateAccount)

	accts, err := s.ListAccounts(ctx, AccountFilter{Prefix: "43"})
	require.NoError(t, err)
	assert.Len(t, accts, 3)

	upd := &ledger.Account{Code: "43.1.2", Description: "Banco BFA"}
	require.NoError(t, s.UpdateAccount(ctx, "43.1.1", upd))
	_, err = s.GetAccount(ctx, "43.1.1")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	assert.ErrorIs(t, s.DeleteAccount(ctx, "43.1"), ledger.ErrHasChildren)
	require.NoError(t, s.DeleteAccount(ctx, "43.1.2"))
	assert.ErrorIs(t, s.DeleteAccount(ctx, "43.1.2"), ledger.ErrAccountNotFound)
}

func TestAccountInUseCannotBeRecoded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, &ledger.Account{Code: "45.1.1", Description: "Caixa loja"}))
	require.NoError(t, s.CreateTransaction(ctx, manual(date(2026, 1, 5), "Entrada de caixa",
		dr("45.1.1", "500"), cr("51", "500"))))

	err := s.UpdateAccount(ctx, "45.1.1", &ledger.Account{Code: "45.1.9", Description: "Caixa"})
	assert.ErrorIs(t, err, ledger.ErrAccountInUse)
	assert.ErrorIs(t, s.DeleteAccount(ctx, "45.1.1"), ledger.ErrAccountInUse)

	// Description-only edits are allowed.
	require.NoError(t, s.UpdateAccount(ctx, "45.1.1", &ledger.Account{Code: "45.1.1", Description: "Caixa principal"}))
}

func TestCreateTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	txn := manual(date(2026, 2, 1), "Realização de capital", dr("43.1", "1000000"), cr("51", "1000000"))
	require.NoError(t, s.CreateTransaction(ctx, txn))
	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, ledger.SourceManual, txn.SourceKind)

	got, err := s.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, got.Finalized)
	require.Len(t, got.Entries, 2)
	assert.True(t, got.Entries[0].Debit.Equal(d("1000000")))

	list, err := s.ListTransactions(ctx, TxnFilter{AccountCode: "43"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = s.ListTransactions(ctx, TxnFilter{From: date(2026, 3, 1)})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.GetTransaction(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestCreateTransactionRejects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.CreateTransaction(ctx, manual(date(2026, 2, 1), "x", dr("43.1", "100"), cr("51", "90")))
	assert.ErrorIs(t, err, ledger.ErrUnbalancedTransaction)

	err = s.CreateTransaction(ctx, manual(date(2026, 2, 1), "x", dr("99.9", "100"), cr("51", "100")))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	list, err := s.ListTransactions(ctx, TxnFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpeningBalances(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := []ledger.OpeningBalance{
		{AccountCode: "43.1", Debit: d("500000")},
		{AccountCode: "51", Credit: d("499999.50")},
	}
	err := s.SaveOpeningBalances(ctx, 2026, bad)
	var unbalanced *ledger.UnbalancedOpeningError
	require.True(t, errors.As(err, &unbalanced))
	assert.True(t, unbalanced.Difference().Equal(d("0.50")))

	rows, err := s.ListOpeningBalances(ctx, 2026)
	require.NoError(t, err)
	assert.Empty(t, rows)

	good := []ledger.OpeningBalance{
		{AccountCode: "43.1", Debit: d("500000")},
		{AccountCode: "51", Credit: d("500000")},
	}
	require.NoError(t, s.SaveOpeningBalances(ctx, 2026, good))

	rows, err = s.ListOpeningBalances(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ledger.BalanceDebit, rows[0].BalanceType)
	assert.Equal(t, ledger.BalanceCredit, rows[1].BalanceType)

	// Saving again replaces the year.
	require.NoError(t, s.SaveOpeningBalances(ctx, 2026, []ledger.OpeningBalance{
		{AccountCode: "45.1", Debit: d("100")},
		{AccountCode: "51", Credit: d("100")},
	}))
	rows, err = s.ListOpeningBalances(ctx, 2026)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "45.1", rows[0].AccountCode)

	err = s.SaveOpeningBalances(ctx, 2026, []ledger.OpeningBalance{
		{AccountCode: "45.9", Debit: d("100")},
		{AccountCode: "51", Credit: d("100")},
	})
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestBalancete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveOpeningBalances(ctx, 2026, []ledger.OpeningBalance{
		{AccountCode: "43.1", Debit: d("1000")},
		{AccountCode: "51", Credit: d("1000")},
	}))
	require.NoError(t, s.CreateTransaction(ctx, manual(date(2026, 1, 15), "Levantamento",
		dr("45.1", "200"), cr("43.1", "200"))))
	require.NoError(t, s.CreateTransaction(ctx, manual(date(2026, 2, 10), "Despesa",
		dr("75", "50"), cr("45.1", "50"))))

	b, err := s.Balancete(ctx, 2026, 2, 2)
	require.NoError(t, err)
	assert.True(t, b.Balanced)
	assert.True(t, b.TotalDebit.Equal(d("50")))

	lines := make(map[string]ledger.BalanceteLine)
	for _, l := range b.Lines {
		lines[l.Code] = l
	}
	// January movements roll into the opening of February.
	assert.True(t, lines["45.1"].OpeningDebit.Equal(d("200")))
	assert.True(t, lines["43.1"].OpeningCredit.Equal(d("200")))
	assert.True(t, lines["45.1"].BalanceDebit.Equal(d("150")), lines["45.1"].BalanceDebit.String())
	assert.True(t, lines["4"].BalanceDebit.Equal(d("950")), lines["4"].BalanceDebit.String())

	_, err = s.Balancete(ctx, 2026, 5, 3)
	assert.ErrorIs(t, err, ledger.ErrInvalidPeriod)
}

func TestExtract(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, &ledger.Account{Code: "43.1.1", Description: "BAI"}))
	require.NoError(t, s.SaveOpeningBalances(ctx, 2026, []ledger.OpeningBalance{
		{AccountCode: "43.1.1", Debit: d("1000")},
		{AccountCode: "51", Credit: d("1000")},
	}))
	require.NoError(t, s.CreateTransaction(ctx, manual(date(2026, 3, 1), "Pagamento",
		dr("75", "300"), cr("43.1.1", "300"))))
	require.NoError(t, s.CreateTransaction(ctx, manual(date(2025, 12, 31), "Ano anterior",
		dr("43.1.1", "5"), cr("51", "5"))))

	ex, err := s.Extract(ctx, "43.1", 2026)
	require.NoError(t, err)
	require.Len(t, ex.Lines, 2)
	assert.True(t, ex.Lines[0].Opening)
	assert.Equal(t, ledger.OpeningDescription, ex.Lines[0].Description)
	assert.Equal(t, "43.1.1", ex.Lines[1].AccountCode)
	assert.True(t, ex.Balance.Equal(d("700")))

	_, err = s.Extract(ctx, "99", 2026)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}
