package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/simonvc/pgcledger/internal/config"
	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/server"
	"github.com/simonvc/pgcledger/internal/store"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestClient(t *testing.T) *Client {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "pgc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ts := httptest.NewServer(server.New(st, config.Default(), nil).Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func TestClientAccounts(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	acct, err := c.CreateAccount(ctx, &ledger.Account{Code: "43.1.1", Description: "Banco BFA"})
	require.NoError(t, err)
	assert.Equal(t, "43.1", acct.ParentCode)

	got, err := c.GetAccount(ctx, "43.1.1")
	require.NoError(t, err)
	assert.Equal(t, "Banco BFA", got.Description)

	_, err = c.GetAccount(ctx, "43.1.9")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	children, err := c.Children(ctx, "43.1")
	require.NoError(t, err)
	assert.Len(t, children, 1)

	found, err := c.SearchAccounts(ctx, "43.1", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, found)

	require.NoError(t, c.DeleteAccount(ctx, "43.1.1"))
}

func TestClientOpeningAndReports(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.SaveOpeningBalances(ctx, 2026, []ledger.OpeningBalance{
		{AccountCode: "43.1", Debit: d("1000")},
		{AccountCode: "51", Credit: d("999.50")},
	})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.NotNil(t, apiErr.Unbalanced)
	assert.True(t, apiErr.Unbalanced.Difference.Equal(d("0.5")))

	_, err = c.SaveOpeningBalances(ctx, 2026, []ledger.OpeningBalance{
		{AccountCode: "43.1", Debit: d("1000")},
		{AccountCode: "51", Credit: d("1000")},
	})
	require.NoError(t, err)

	_, err = c.CreateTransaction(ctx, &ledger.Transaction{
		Date:        time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Description: "Levantamento",
		Entries: []ledger.Entry{
			{AccountCode: "45.1", Debit: d("200")},
			{AccountCode: "43.1", Credit: d("200")},
		},
	})
	require.NoError(t, err)

	b, err := c.Balancete(ctx, 2026, 1, 12)
	require.NoError(t, err)
	assert.True(t, b.Balanced)

	ex, err := c.Extract(ctx, "43.1", 2026)
	require.NoError(t, err)
	assert.True(t, ex.Balance.Equal(d("800")))

	raw, err := c.ExportBalancete(ctx, 2026, 1, 12)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())
}

func TestClientClassifyAndVAT(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.CreateInvoice(ctx, &documents.Invoice{
		Number:     "FT 2026/7",
		Type:       documents.TypeFatura,
		ClientID:   "CLI-7",
		ClientName: "Loja Maianga",
		Date:       time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		Status:     documents.InvoiceCertified,
		Items: []documents.Item{
			{Description: "Caderno", Kind: documents.KindProduct, Quantity: d("10"), UnitPrice: d("500"), TaxRate: d("14")},
		},
	})
	require.NoError(t, err)

	view, err := c.Classification(ctx, "sales")
	require.NoError(t, err)
	require.Len(t, view.Entries, 1)

	preview, err := c.PreviewClassification(ctx, "sales", ClassifyRequest{Auto: true})
	require.NoError(t, err)
	require.True(t, preview.Ready, preview.Problem)

	batch, err := c.PostClassification(ctx, "sales", ClassifyRequest{Auto: true})
	require.NoError(t, err)
	assert.Len(t, batch.Transactions, 1)

	st, err := c.VAT(ctx, 2026, 5, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, st.Balance.Equal(d("700")))

	_, err = c.RegisterVAT(ctx, 2026, 5, decimal.Zero, decimal.Zero, false)
	require.NoError(t, err)
	_, err = c.RegisterVAT(ctx, 2026, 5, decimal.Zero, decimal.Zero, false)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	list, err := c.ListVAT(ctx, 2026)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClientWithholdingsAndSettings(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	wh, err := c.Withholdings(ctx, d("150000"))
	require.NoError(t, err)
	assert.True(t, wh.Net.Equal(d("139585")))

	s, err := c.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AOA", s.Company.Currency)
	assert.Equal(t, "14", s.Taxes.VATRate)
	assert.NotEmpty(t, s.Taxes.IRTBrackets)
}
