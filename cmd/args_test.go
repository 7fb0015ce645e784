package cmd

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/ledger"
)

func TestParseEntry(t *testing.T) {
	e, err := parseEntry("43.1:+150.000,50")
	require.NoError(t, err)
	assert.Equal(t, "43.1", e.AccountCode)
	assert.True(t, e.Debit.Equal(decimal.RequireFromString("150000.50")))
	assert.True(t, e.Credit.IsZero())

	e, err = parseEntry("51:-5000")
	require.NoError(t, err)
	assert.True(t, e.Credit.Equal(decimal.NewFromInt(5000)))

	for _, bad := range []string{"43.1", ":+10", "43.1:+abc"} {
		_, err := parseEntry(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseDate("2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, 3, int(d.Month()))

	_, err = parseDate("31/03/2026")
	assert.Error(t, err)
}

func TestParseOverride(t *testing.T) {
	o, err := parseOverride(ledger.SourceSales, "inv-1/item-2:credit=71.1")
	require.NoError(t, err)
	assert.Equal(t, classify.Key{Kind: ledger.SourceSales, DocumentID: "inv-1", ItemID: "item-2"}, o.Key)
	assert.Equal(t, "credit", o.Role)
	assert.Equal(t, "71.1", o.Account)
	assert.Equal(t, "inv-1/item-2", keyArg(o.Key))

	o, err = parseOverride(ledger.SourcePayroll, "run-1:irt=34.2")
	require.NoError(t, err)
	assert.Empty(t, o.Key.ItemID)
	assert.Equal(t, "run-1", keyArg(o.Key))

	for _, bad := range []string{"run-1", "run-1:irt", "run-1:=34.2", "run-1:irt="} {
		_, err := parseOverride(ledger.SourcePayroll, bad)
		assert.Error(t, err, bad)
	}
}

func TestKindArg(t *testing.T) {
	k, err := kindArg("payroll-payment")
	require.NoError(t, err)
	assert.Equal(t, ledger.SourcePayrollPayment, k)

	_, err = kindArg("rent")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Caixa", truncate("Caixa", 10))
	assert.Equal(t, "Depósi..", truncate("Depósitos à ordem", 8))
}

func TestCommandLogLevel(t *testing.T) {
	assert.Equal(t, "warn", commandLogLevel(&cobra.Command{Use: "account"}, "info"))
	assert.Equal(t, "info", commandLogLevel(serveCmd, "info"))

	old := flagLogLevel
	t.Cleanup(func() { flagLogLevel = old })
	c := &cobra.Command{Use: "vat"}
	c.Flags().StringVar(&flagLogLevel, "log-level", "warn", "")
	require.NoError(t, c.Flags().Set("log-level", "debug"))
	assert.Equal(t, "debug", commandLogLevel(c, "info"))
}
