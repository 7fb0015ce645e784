package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findLine(t *testing.T, b *Balancete, code string) BalanceteLine {
	t.Helper()
	for _, l := range b.Lines {
		if l.Code == code {
			return l
		}
	}
	require.Failf(t, "line not found", "code %s", code)
	return BalanceteLine{}
}

func TestBuildBalancete(t *testing.T) {
	opening := []OpeningBalance{
		{AccountCode: "43.1", Year: 2024, Debit: d("500000")},
		{AccountCode: "51", Year: 2024, Credit: d("500000")},
	}
	movements := []AccountTotal{
		{Code: "31.1.2.1.7", Debit: d("11400")},
		{Code: "62.1", Credit: d("10000")},
		{Code: "34.5.3.1", Credit: d("1400")},
	}
	b := BuildBalancete(2024, 1, 3, DefaultChart(), opening, movements)

	assert.True(t, b.Balanced)
	assert.True(t, b.TotalDebit.Equal(d("11400")))
	assert.True(t, b.TotalCredit.Equal(d("11400")))
	assert.True(t, b.TotalOpeningDebit.Equal(d("500000")))

	class3 := findLine(t, b, "3")
	assert.True(t, class3.Debit.Equal(d("11400")))
	assert.True(t, class3.Credit.Equal(d("1400")))
	assert.True(t, class3.BalanceDebit.Equal(d("10000")))

	// Groups have no parent code but still total into their class.
	equity := findLine(t, b, "5")
	assert.True(t, equity.OpeningCredit.Equal(d("500000")))
	assert.True(t, findLine(t, b, "51").OpeningCredit.Equal(d("500000")))

	client := findLine(t, b, "31.1.2.1.7")
	assert.Equal(t, TypeSubconta, client.Type)
	assert.Equal(t, 4, client.Level)

	revenue := findLine(t, b, "62.1")
	assert.True(t, revenue.BalanceCredit.Equal(d("10000")))
	assert.True(t, revenue.BalanceDebit.IsZero())

	for i := 1; i < len(b.Lines); i++ {
		assert.Negative(t, CompareCodes(b.Lines[i-1].Code, b.Lines[i].Code))
	}
}

func TestBuildBalanceteUnbalanced(t *testing.T) {
	b := BuildBalancete(2024, 1, 12, nil, nil, []AccountTotal{
		{Code: "72.1", Debit: d("150000")},
		{Code: "36.1", Credit: d("139585")},
	})
	assert.False(t, b.Balanced)
}

func TestBuildExtract(t *testing.T) {
	acc := Account{Code: "43", Description: "Depósitos à ordem"}
	opening := []OpeningBalance{
		{AccountCode: "43.1", Year: 2024, Debit: d("500000")},
		{AccountCode: "43.1", Year: 2023, Debit: d("1")},
		{AccountCode: "51", Year: 2024, Credit: d("500000")},
	}
	movements := []ExtractLine{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), AccountCode: "43.1", Description: "Salários", Credit: d("139585")},
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), AccountCode: "43.1", Description: "Recebimento", Debit: d("11400")},
	}
	ex := BuildExtract(acc, 2024, opening, movements)

	require.Len(t, ex.Lines, 3)
	assert.True(t, ex.Lines[0].Opening)
	assert.Equal(t, OpeningDescription, ex.Lines[0].Description)
	assert.True(t, ex.Lines[0].Balance.Equal(d("500000")))
	assert.Equal(t, "Recebimento", ex.Lines[1].Description)
	assert.True(t, ex.Lines[1].Balance.Equal(d("511400")))
	assert.True(t, ex.Lines[2].Balance.Equal(d("371815")))
	assert.True(t, ex.Balance.Equal(d("371815")))
	assert.True(t, ex.TotalDebit.Equal(d("511400")))
}

func TestBuildExtractWithoutOpening(t *testing.T) {
	ex := BuildExtract(Account{Code: "62.1"}, 2024, nil, []ExtractLine{
		{AccountCode: "62.1", Credit: d("10000")},
	})
	require.Len(t, ex.Lines, 1)
	assert.True(t, ex.Balance.Equal(d("-10000")))
}
