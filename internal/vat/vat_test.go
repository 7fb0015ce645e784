package vat

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/pgcledger/internal/documents"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func march(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }

func TestCompute(t *testing.T) {
	invoices := []documents.Invoice{
		{Type: documents.TypeFatura, Status: documents.InvoiceCertified, Date: march(1), Tax: d("1400")},
		{Type: documents.TypeFaturaRecibo, Status: documents.InvoiceCertified, Date: march(2), Tax: d("700")},
		{Type: documents.TypeNotaCredito, Status: documents.InvoiceCertified, Date: march(3), Tax: d("100")},
		{Type: documents.TypeFatura, Status: documents.InvoiceDraft, Date: march(4), Tax: d("9999")},
		{Type: documents.TypeFatura, Status: documents.InvoiceCertified, Date: march(1).AddDate(0, 1, 0), Tax: d("9999")},
	}
	purchases := []documents.Purchase{
		{Status: documents.PurchasePaid, Date: march(5), Tax: d("500")},
		{Status: documents.PurchasePending, Date: march(5), Tax: d("9999")},
	}

	s, err := Compute(2024, 3, invoices, purchases, d("50"), d("25"))
	require.NoError(t, err)
	assert.True(t, s.OutputVAT.Equal(d("2000")))
	assert.True(t, s.InputVAT.Equal(d("500")))
	assert.True(t, s.TotalCredit.Equal(d("2050")))
	assert.True(t, s.TotalDebit.Equal(d("525")))
	assert.True(t, s.Balance.Equal(d("1525")))
	assert.Equal(t, LabelPayable, s.Label)
	assert.Equal(t, 3, s.InvoiceCount)
	assert.Equal(t, 1, s.PurchaseCount)
}

func TestComputeRecoverable(t *testing.T) {
	purchases := []documents.Purchase{{Status: documents.PurchasePaid, Date: march(5), Tax: d("500")}}
	s, err := Compute(2024, 3, nil, purchases, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, s.Balance.Equal(d("-500")))
	assert.Equal(t, LabelRecoverable, s.Label)

	s, err = Compute(2024, 3, nil, purchases, decimal.Zero, d("-500"))
	require.NoError(t, err)
	assert.True(t, s.Balance.IsZero())
	assert.Equal(t, LabelPayable, s.Label)
}

func TestComputeInvalidPeriod(t *testing.T) {
	_, err := Compute(2024, 0, nil, nil, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestJournal(t *testing.T) {
	s := &Settlement{Year: 2024, Month: 2, TotalCredit: d("2000"), TotalDebit: d("500"), Balance: d("1500")}
	tx, err := Journal(s, "34.5.3.1", "34.5.2.1", "34.5.6")
	require.NoError(t, err)
	require.Len(t, tx.Entries, 3)
	assert.True(t, tx.Entries[0].Debit.Equal(d("2000")))
	assert.True(t, tx.Entries[1].Credit.Equal(d("500")))
	assert.True(t, tx.Entries[2].Credit.Equal(d("1500")))
	assert.Equal(t, 29, tx.Date.Day())

	s = &Settlement{Year: 2024, Month: 3, TotalDebit: d("500"), Balance: d("-500")}
	tx, err = Journal(s, "34.5.3.1", "34.5.2.1", "34.5.6")
	require.NoError(t, err)
	require.Len(t, tx.Entries, 2)
	assert.Equal(t, "34.5.6", tx.Entries[1].AccountCode)
	assert.True(t, tx.Entries[1].Debit.Equal(d("500")))

	_, err = Journal(&Settlement{Year: 2024, Month: 3}, "34.5.3.1", "34.5.2.1", "34.5.6")
	assert.ErrorIs(t, err, ErrNothingToSettle)
}
