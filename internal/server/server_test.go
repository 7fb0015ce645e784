package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/pgcledger/internal/assistant"
	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/config"
	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/export"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/payroll"
	"github.com/simonvc/pgcledger/internal/store"
	"github.com/simonvc/pgcledger/internal/vat"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "pgc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, config.Default(), nil).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAccountsAPI(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/accounts", map[string]string{"code": "43.1.1", "description": "Banco BAI"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	acct := decodeBody[ledger.Account](t, rec)
	assert.Equal(t, "43.1", acct.ParentCode)
	assert.Equal(t, ledger.NatureForCode("43.1.1"), acct.Nature)

	rec = do(t, h, http.MethodPost, "/accounts", map[string]string{"code": "43.1.1", "description": "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/accounts", map[string]string{"code": "43.1.2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/accounts", `{"code":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/accounts/99.9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/accounts/43.1/children", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ledger.Account](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/accounts/search?q=deposito&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decodeBody[[]ledger.Account](t, rec)
	require.NotEmpty(t, found)
	assert.Equal(t, "43", found[0].Code)

	rec = do(t, h, http.MethodDelete, "/accounts/43.1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(t, h, http.MethodDelete, "/accounts/43.1.1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTransactionsAPI(t *testing.T) {
	h := newTestServer(t)

	body := map[string]any{
		"date":        "2026-02-01",
		"description": "Capital",
		"entries": []map[string]string{
			{"account_code": "43.1", "debit": "1000"},
			{"account_code": "51", "credit": "1000"},
		},
	}
	rec := do(t, h, http.MethodPost, "/transactions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	txn := decodeBody[ledger.Transaction](t, rec)
	assert.True(t, txn.Finalized)

	rec = do(t, h, http.MethodGet, "/transactions/"+txn.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	body["entries"] = []map[string]string{
		{"account_code": "43.1", "debit": "1000"},
		{"account_code": "51", "credit": "900"},
	}
	rec = do(t, h, http.MethodPost, "/transactions", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodGet, "/transactions?account=43", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ledger.Transaction](t, rec), 1)
}

func TestOpeningAPI(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPut, "/opening/2026", map[string]any{"rows": []map[string]string{
		{"account_code": "43.1", "debit": "500000"},
		{"account_code": "51", "credit": "499999.50"},
	}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody[unbalancedResponse](t, rec)
	assert.True(t, resp.Difference.Equal(d("0.50")))

	rec = do(t, h, http.MethodGet, "/opening/2026", nil)
	assert.Len(t, decodeBody[[]ledger.OpeningBalance](t, rec), 0)

	rec = do(t, h, http.MethodPut, "/opening/2026", map[string]any{"rows": []map[string]string{
		{"account_code": "43.1", "debit": "500000"},
		{"account_code": "51", "credit": "500000"},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/reports/balancete?year=2026&from=1&to=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	b := decodeBody[ledger.Balancete](t, rec)
	assert.True(t, b.Balanced)
	assert.True(t, b.TotalOpeningDebit.Equal(d("500000")))

	rec = do(t, h, http.MethodGet, "/reports/extract?account=43&year=2026", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ex := decodeBody[ledger.Extract](t, rec)
	assert.True(t, ex.Balance.Equal(d("500000")))

	rec = do(t, h, http.MethodGet, "/reports/extract?year=2026", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/export/balancete?year=2026", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "balancete-2026-01-12.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func invoiceBody() documents.Invoice {
	return documents.Invoice{
		Number:     "FT 2026/1",
		Type:       documents.TypeFatura,
		ClientID:   "CLI-0042",
		ClientName: "Mercado Kinaxixi",
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:     documents.InvoiceCertified,
		Items: []documents.Item{
			{Description: "Consultoria", Kind: documents.KindService, Quantity: d("1"), UnitPrice: d("10000"), TaxRate: d("14")},
		},
	}
}

func TestClassificationAPI(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/invoices", invoiceBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decodeBody[documents.Invoice](t, rec)
	assert.True(t, inv.Total.Equal(d("11400")))

	rec = do(t, h, http.MethodPost, "/invoices", invoiceBody())
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Items without a rate take the configured VAT rate unless exempt.
	draft := invoiceBody()
	draft.Number = "FT 2026/2"
	draft.Status = documents.InvoiceDraft
	draft.Items = []documents.Item{
		{Description: "Formação", Kind: documents.KindService, Quantity: d("1"), UnitPrice: d("1000")},
		{Description: "Livros", Kind: documents.KindProduct, Quantity: d("1"), UnitPrice: d("500"), Exempt: true},
	}
	rec = do(t, h, http.MethodPost, "/invoices", draft)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	withDefault := decodeBody[documents.Invoice](t, rec)
	assert.True(t, withDefault.Items[0].TaxRate.Equal(d("14")))
	assert.True(t, withDefault.Tax.Equal(d("140")))

	draft.Number = "FT 2026/3"
	draft.Items[1].TaxRate = d("14")
	rec = do(t, h, http.MethodPost, "/invoices", draft)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/classify/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeBody[classificationView](t, rec)
	require.Len(t, v.Entries, 1)
	assert.Equal(t, classify.StatusPending, v.Entries[0].Status)

	rec = do(t, h, http.MethodPost, "/classify/sales/post", classifyRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	key := v.Entries[0].Key
	rec = do(t, h, http.MethodPost, "/classify/sales/preview", classifyRequest{
		Auto:      true,
		Overrides: []classifyOverride{{Key: key, Role: classify.RoleCredit, Account: "99.1"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/classify/sales/preview", classifyRequest{Auto: true})
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeBody[previewResponse](t, rec)
	assert.True(t, p.Ready, p.Problem)

	rec = do(t, h, http.MethodPost, "/classify/sales/post", classifyRequest{Auto: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	batch := decodeBody[classify.Batch](t, rec)
	assert.Len(t, batch.Transactions, 1)

	rec = do(t, h, http.MethodGet, "/classify/sales", nil)
	assert.Empty(t, decodeBody[classificationView](t, rec).Entries)

	rec = do(t, h, http.MethodPatch, "/invoices/"+inv.ID+"/status", statusRequest{Status: string(documents.InvoiceCancelled)})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/classify/rent", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayrollAPI(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/tax/withholdings?gross=150000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	wh := decodeBody[withholdingsResponse](t, rec)
	assert.True(t, wh.INSS.Equal(d("4500")))
	assert.True(t, wh.IRT.Equal(d("5915")))
	assert.True(t, wh.EmployerINSS.Equal(d("12000")))

	rec = do(t, h, http.MethodPost, "/employees", payroll.Employee{Name: "Ana", BaseSalary: d("150000"), Active: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/employees", payroll.Employee{BaseSalary: d("1")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/payroll/2026/3/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	run := decodeBody[payroll.Run](t, rec)
	require.Len(t, run.Slips, 1)
	assert.True(t, run.Slips[0].Net.Equal(d("139585")))

	rec = do(t, h, http.MethodPost, "/payroll/2026/3/certify", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/payroll/2026/3/certify", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/payroll/2026/13/preview", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/export/payroll/2026/3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/export/payroll/2026/4", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVATAPI(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/invoices", invoiceBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/vat/2026/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[vat.Settlement](t, rec)
	assert.True(t, st.Balance.Equal(d("1400")))
	assert.Equal(t, vat.LabelPayable, st.Label)

	rec = do(t, h, http.MethodPost, "/vat/2026/3", registerVATRequest{Post: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	st = decodeBody[vat.Settlement](t, rec)
	assert.NotEmpty(t, st.TransactionID)

	rec = do(t, h, http.MethodPost, "/vat/2026/3", registerVATRequest{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/vat?year=2026", nil)
	assert.Len(t, decodeBody[[]vat.Settlement](t, rec), 1)
}

func TestContractsAPI(t *testing.T) {
	h := newTestServer(t)

	body := map[string]string{
		"empresa_id":     "emp-1",
		"funcionario_id": "func-7",
		"tipo":           "INDETERMINADO",
		"data_inicio":    "2026-01-01",
		"salario":        "150000",
	}
	rec := do(t, h, http.MethodPut, "/contracts", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body["salario"] = "160000"
	rec = do(t, h, http.MethodPut, "/contracts", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/contracts?empresa_id=emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	body["data_inicio"] = "01/01/2026"
	rec = do(t, h, http.MethodPut, "/contracts", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistantFallback(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/assistant/ask", askRequest{Prompt: "Quanto IVA devo?", Year: 2026})
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decodeBody[assistant.Reply](t, rec)
	assert.True(t, reply.Fallback)
	assert.Equal(t, assistant.Fallback, reply.Text)

	rec = do(t, h, http.MethodPost, "/assistant/ask", askRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/assistant/invoice", extractInvoiceRequest{Text: "FT 1"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSettings(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[settingsResponse](t, rec)
	assert.Equal(t, "AOA", resp.Company.Currency)
	assert.Equal(t, "34.5.6", resp.Accounts.VATSettlement)
}
