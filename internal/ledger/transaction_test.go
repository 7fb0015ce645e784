package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTransactionValidate(t *testing.T) {
	ok := Transaction{
		Description: "FT 1",
		Entries: []Entry{
			{AccountCode: "31.1.2.1.7", Debit: d("11400")},
			{AccountCode: "62.1", Credit: d("10000")},
			{AccountCode: "34.5.3.1", Credit: d("1400")},
		},
	}
	require.NoError(t, ok.Validate())

	unbalanced := ok
	unbalanced.Entries = []Entry{
		{AccountCode: "72.1", Debit: d("150000")},
		{AccountCode: "36.1", Credit: d("139585")},
	}
	assert.ErrorIs(t, unbalanced.Validate(), ErrUnbalancedTransaction)

	single := ok
	single.Entries = ok.Entries[:1]
	assert.ErrorIs(t, single.Validate(), ErrTooFewEntries)

	both := ok
	both.Entries = []Entry{
		{AccountCode: "72.1", Debit: d("1"), Credit: d("1")},
		{AccountCode: "36.1", Credit: d("0")},
	}
	assert.ErrorIs(t, both.Validate(), ErrInvalidEntry)

	noDesc := ok
	noDesc.Description = ""
	assert.ErrorIs(t, noDesc.Validate(), ErrEmptyDescription)
}

func TestValidateOpening(t *testing.T) {
	t.Run("off by more than tolerance", func(t *testing.T) {
		err := ValidateOpening(2024, []OpeningBalance{
			{AccountCode: "43.1", Debit: d("500000")},
			{AccountCode: "51", Credit: d("499999.50")},
		})
		require.ErrorIs(t, err, ErrUnbalancedOpening)
		var ue *UnbalancedOpeningError
		require.ErrorAs(t, err, &ue)
		assert.True(t, ue.Difference().Equal(d("0.50")))
	})

	t.Run("within tolerance", func(t *testing.T) {
		err := ValidateOpening(2024, []OpeningBalance{
			{AccountCode: "43.1", Debit: d("500000")},
			{AccountCode: "51", Credit: d("499999.99")},
		})
		assert.NoError(t, err)
	})

	t.Run("duplicate account", func(t *testing.T) {
		err := ValidateOpening(2024, []OpeningBalance{
			{AccountCode: "43.1", Debit: d("10")},
			{AccountCode: "43.1", Credit: d("10")},
		})
		assert.ErrorIs(t, err, ErrDuplicateOpeningRow)
	})

	t.Run("bad year", func(t *testing.T) {
		assert.ErrorIs(t, ValidateOpening(0, nil), ErrInvalidPeriod)
	})
}

func TestDeriveBalanceType(t *testing.T) {
	o := OpeningBalance{Debit: d("10"), Credit: d("5")}
	o.DeriveBalanceType()
	assert.Equal(t, BalanceDebit, o.BalanceType)

	o = OpeningBalance{Debit: d("5"), Credit: d("5")}
	o.DeriveBalanceType()
	assert.Equal(t, BalanceCredit, o.BalanceType)
}
