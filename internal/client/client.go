package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/assistant"
	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/contracts"
	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/payroll"
	"github.com/simonvc/pgcledger/internal/tax"
	"github.com/simonvc/pgcledger/internal/vat"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is returned for every response with a 4xx or 5xx status.
type APIError struct {
	StatusCode int
	Message    string
	// Unbalanced carries the totals of a rejected opening balance.
	Unbalanced *UnbalancedOpening
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

type UnbalancedOpening struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Difference  decimal.Decimal `json:"difference"`
}

func apiPath(parts ...string) string {
	p := "/api/v1"
	for _, s := range parts {
		p += "/" + url.PathEscape(s)
	}
	return p
}

func withQuery(p string, params url.Values) string {
	if len(params) == 0 {
		return p
	}
	return p + "?" + params.Encode()
}

// Accounts

func (c *Client) CreateAccount(ctx context.Context, acct *ledger.Account) (*ledger.Account, error) {
	body := map[string]any{
		"code":        acct.Code,
		"description": acct.Description,
		"type":        acct.Type,
		"nature":      acct.Nature,
	}
	var result ledger.Account
	if err := c.post(ctx, apiPath("accounts"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context, prefix, accountType string) ([]ledger.Account, error) {
	params := url.Values{}
	if prefix != "" {
		params.Set("prefix", prefix)
	}
	if accountType != "" {
		params.Set("type", accountType)
	}
	var result []ledger.Account
	if err := c.get(ctx, withQuery(apiPath("accounts"), params), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) SearchAccounts(ctx context.Context, query string, limit int) ([]ledger.Account, error) {
	params := url.Values{"q": {query}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var result []ledger.Account
	if err := c.get(ctx, withQuery(apiPath("accounts", "search"), params), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetAccount(ctx context.Context, code string) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.get(ctx, apiPath("accounts", code), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Children(ctx context.Context, code string) ([]ledger.Account, error) {
	var result []ledger.Account
	if err := c.get(ctx, apiPath("accounts", code, "children"), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) UpdateAccount(ctx context.Context, code string, acct *ledger.Account) (*ledger.Account, error) {
	body := map[string]any{
		"code":        acct.Code,
		"description": acct.Description,
		"type":        acct.Type,
		"nature":      acct.Nature,
	}
	var result ledger.Account
	if err := c.put(ctx, apiPath("accounts", code), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteAccount(ctx context.Context, code string) error {
	return c.del(ctx, apiPath("accounts", code))
}

// Journal

func (c *Client) CreateTransaction(ctx context.Context, txn *ledger.Transaction) (*ledger.Transaction, error) {
	type entryReq struct {
		AccountCode string          `json:"account_code"`
		Debit       decimal.Decimal `json:"debit"`
		Credit      decimal.Decimal `json:"credit"`
		Memo        string          `json:"memo,omitempty"`
	}
	entries := make([]entryReq, len(txn.Entries))
	for i, e := range txn.Entries {
		entries[i] = entryReq{AccountCode: e.AccountCode, Debit: e.Debit, Credit: e.Credit, Memo: e.Memo}
	}
	body := map[string]any{
		"description": txn.Description,
		"entries":     entries,
	}
	if !txn.Date.IsZero() {
		body["date"] = txn.Date.Format(time.DateOnly)
	}
	var result ledger.Transaction
	if err := c.post(ctx, apiPath("transactions"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type TxnFilter struct {
	AccountCode string
	SourceKind  string
	From, To    time.Time
	Limit       int
}

func (c *Client) ListTransactions(ctx context.Context, f TxnFilter) ([]ledger.Transaction, error) {
	params := url.Values{}
	if f.AccountCode != "" {
		params.Set("account", f.AccountCode)
	}
	if f.SourceKind != "" {
		params.Set("kind", f.SourceKind)
	}
	if !f.From.IsZero() {
		params.Set("from", f.From.Format(time.DateOnly))
	}
	if !f.To.IsZero() {
		params.Set("to", f.To.Format(time.DateOnly))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	var result []ledger.Transaction
	if err := c.get(ctx, withQuery(apiPath("transactions"), params), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	var result ledger.Transaction
	if err := c.get(ctx, apiPath("transactions", id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Opening balances and reports

func (c *Client) OpeningBalances(ctx context.Context, year int) ([]ledger.OpeningBalance, error) {
	var result []ledger.OpeningBalance
	if err := c.get(ctx, apiPath("opening", strconv.Itoa(year)), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) SaveOpeningBalances(ctx context.Context, year int, rows []ledger.OpeningBalance) ([]ledger.OpeningBalance, error) {
	type rowReq struct {
		AccountCode string          `json:"account_code"`
		Debit       decimal.Decimal `json:"debit"`
		Credit      decimal.Decimal `json:"credit"`
	}
	body := struct {
		Rows []rowReq `json:"rows"`
	}{Rows: make([]rowReq, len(rows))}
	for i, r := range rows {
		body.Rows[i] = rowReq{AccountCode: r.AccountCode, Debit: r.Debit, Credit: r.Credit}
	}
	var result []ledger.OpeningBalance
	if err := c.put(ctx, apiPath("opening", strconv.Itoa(year)), body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func periodQuery(year, from, to int) url.Values {
	params := url.Values{}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	if from > 0 {
		params.Set("from", strconv.Itoa(from))
	}
	if to > 0 {
		params.Set("to", strconv.Itoa(to))
	}
	return params
}

func (c *Client) Balancete(ctx context.Context, year, fromMonth, toMonth int) (*ledger.Balancete, error) {
	var result ledger.Balancete
	if err := c.get(ctx, withQuery(apiPath("reports", "balancete"), periodQuery(year, fromMonth, toMonth)), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Extract(ctx context.Context, code string, year int) (*ledger.Extract, error) {
	params := periodQuery(year, 0, 0)
	params.Set("account", code)
	var result ledger.Extract
	if err := c.get(ctx, withQuery(apiPath("reports", "extract"), params), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Spreadsheets. Each returns the xlsx bytes.

func (c *Client) ExportBalancete(ctx context.Context, year, fromMonth, toMonth int) ([]byte, error) {
	return c.getRaw(ctx, withQuery(apiPath("export", "balancete"), periodQuery(year, fromMonth, toMonth)))
}

func (c *Client) ExportExtract(ctx context.Context, code string, year int) ([]byte, error) {
	params := periodQuery(year, 0, 0)
	params.Set("account", code)
	return c.getRaw(ctx, withQuery(apiPath("export", "extract"), params))
}

func (c *Client) ExportPayroll(ctx context.Context, year, month int) ([]byte, error) {
	return c.getRaw(ctx, apiPath("export", "payroll", strconv.Itoa(year), strconv.Itoa(month)))
}

func (c *Client) ExportVAT(ctx context.Context, year int) ([]byte, error) {
	return c.getRaw(ctx, withQuery(apiPath("export", "vat"), periodQuery(year, 0, 0)))
}

// Source documents

type DocumentFilter struct {
	Status   string
	From, To time.Time
}

func (f DocumentFilter) query() url.Values {
	params := url.Values{}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	if !f.From.IsZero() {
		params.Set("from", f.From.Format(time.DateOnly))
	}
	if !f.To.IsZero() {
		params.Set("to", f.To.Format(time.DateOnly))
	}
	return params
}

func (c *Client) CreateInvoice(ctx context.Context, inv *documents.Invoice) (*documents.Invoice, error) {
	var result documents.Invoice
	if err := c.post(ctx, apiPath("invoices"), inv, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListInvoices(ctx context.Context, f DocumentFilter) ([]documents.Invoice, error) {
	var result []documents.Invoice
	if err := c.get(ctx, withQuery(apiPath("invoices"), f.query()), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*documents.Invoice, error) {
	var result documents.Invoice
	if err := c.get(ctx, apiPath("invoices", id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SetInvoiceStatus(ctx context.Context, id string, status documents.InvoiceStatus) (*documents.Invoice, error) {
	var result documents.Invoice
	if err := c.patch(ctx, apiPath("invoices", id, "status"), map[string]any{"status": status}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreatePurchase(ctx context.Context, p *documents.Purchase) (*documents.Purchase, error) {
	var result documents.Purchase
	if err := c.post(ctx, apiPath("purchases"), p, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListPurchases(ctx context.Context, f DocumentFilter) ([]documents.Purchase, error) {
	var result []documents.Purchase
	if err := c.get(ctx, withQuery(apiPath("purchases"), f.query()), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) SetPurchaseStatus(ctx context.Context, id string, status documents.PurchaseStatus) (*documents.Purchase, error) {
	var result documents.Purchase
	if err := c.patch(ctx, apiPath("purchases", id, "status"), map[string]any{"status": status}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Payroll

func (c *Client) CreateEmployee(ctx context.Context, e *payroll.Employee) (*payroll.Employee, error) {
	var result payroll.Employee
	if err := c.post(ctx, apiPath("employees"), e, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListEmployees(ctx context.Context, activeOnly bool) ([]payroll.Employee, error) {
	params := url.Values{}
	if activeOnly {
		params.Set("active", "true")
	}
	var result []payroll.Employee
	if err := c.get(ctx, withQuery(apiPath("employees"), params), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, e *payroll.Employee) (*payroll.Employee, error) {
	var result payroll.Employee
	if err := c.put(ctx, apiPath("employees", e.ID), e, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreateHrTransaction(ctx context.Context, t *payroll.HrTransaction) (*payroll.HrTransaction, error) {
	var result payroll.HrTransaction
	if err := c.post(ctx, apiPath("hr-transactions"), t, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListHrTransactions(ctx context.Context, employeeID string, pendingOnly bool) ([]payroll.HrTransaction, error) {
	params := url.Values{}
	if employeeID != "" {
		params.Set("employee", employeeID)
	}
	if pendingOnly {
		params.Set("pending", "true")
	}
	var result []payroll.HrTransaction
	if err := c.get(ctx, withQuery(apiPath("hr-transactions"), params), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) DeleteHrTransaction(ctx context.Context, id string) error {
	return c.del(ctx, apiPath("hr-transactions", id))
}

type Withholdings struct {
	Gross        decimal.Decimal `json:"gross"`
	INSS         decimal.Decimal `json:"inss"`
	IRT          decimal.Decimal `json:"irt"`
	EmployerINSS decimal.Decimal `json:"employer_inss"`
	Net          decimal.Decimal `json:"net"`
}

func (c *Client) Withholdings(ctx context.Context, gross decimal.Decimal) (*Withholdings, error) {
	var result Withholdings
	params := url.Values{"gross": {gross.String()}}
	if err := c.get(ctx, withQuery(apiPath("tax", "withholdings"), params), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PreviewPayroll(ctx context.Context, year, month int) (*payroll.Run, error) {
	var result payroll.Run
	if err := c.get(ctx, apiPath("payroll", strconv.Itoa(year), strconv.Itoa(month), "preview"), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CertifyPayroll(ctx context.Context, year, month int) (*payroll.Run, error) {
	var result payroll.Run
	if err := c.post(ctx, apiPath("payroll", strconv.Itoa(year), strconv.Itoa(month), "certify"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PayrollRun(ctx context.Context, year, month int) (*payroll.Run, error) {
	var result payroll.Run
	if err := c.get(ctx, apiPath("payroll", strconv.Itoa(year), strconv.Itoa(month)), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListPayrollRuns(ctx context.Context) ([]payroll.Run, error) {
	var result []payroll.Run
	if err := c.get(ctx, apiPath("payroll", "runs"), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Classification

type Override struct {
	Key     classify.Key `json:"key"`
	Role    string       `json:"role"`
	Account string       `json:"account"`
}

// ClassifyRequest replays the choices made on a classification screen.
type ClassifyRequest struct {
	Documents []string       `json:"documents,omitempty"`
	Auto      bool           `json:"auto"`
	Selected  []classify.Key `json:"selected,omitempty"`
	Overrides []Override     `json:"overrides,omitempty"`
}

type Classification struct {
	Entries    []classify.Entry  `json:"entries"`
	Unresolved []classify.Result `json:"unresolved"`
}

type Preview struct {
	Classification
	Ready   bool            `json:"ready"`
	Problem string          `json:"problem,omitempty"`
	Batch   *classify.Batch `json:"batch,omitempty"`
}

// Classification lists the pending entries of a source kind: sales,
// purchases, payroll or payroll-payment.
func (c *Client) Classification(ctx context.Context, kind string) (*Classification, error) {
	var result Classification
	if err := c.get(ctx, apiPath("classify", kind), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PreviewClassification(ctx context.Context, kind string, req ClassifyRequest) (*Preview, error) {
	var result Preview
	if err := c.post(ctx, apiPath("classify", kind, "preview"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PostClassification(ctx context.Context, kind string, req ClassifyRequest) (*classify.Batch, error) {
	var result classify.Batch
	if err := c.post(ctx, apiPath("classify", kind, "post"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VAT

func (c *Client) VAT(ctx context.Context, year, month int, salesAdjust, purchaseAdjust decimal.Decimal) (*vat.Settlement, error) {
	params := url.Values{}
	if !salesAdjust.IsZero() {
		params.Set("sales_adjust", salesAdjust.String())
	}
	if !purchaseAdjust.IsZero() {
		params.Set("purchase_adjust", purchaseAdjust.String())
	}
	var result vat.Settlement
	if err := c.get(ctx, withQuery(apiPath("vat", strconv.Itoa(year), strconv.Itoa(month)), params), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RegisterVAT(ctx context.Context, year, month int, salesAdjust, purchaseAdjust decimal.Decimal, post bool) (*vat.Settlement, error) {
	body := map[string]any{
		"sales_adjust":    salesAdjust,
		"purchase_adjust": purchaseAdjust,
		"post":            post,
	}
	var result vat.Settlement
	if err := c.post(ctx, apiPath("vat", strconv.Itoa(year), strconv.Itoa(month)), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListVAT(ctx context.Context, year int) ([]vat.Settlement, error) {
	var result []vat.Settlement
	if err := c.get(ctx, withQuery(apiPath("vat"), periodQuery(year, 0, 0)), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Contracts

func (c *Client) UpsertContract(ctx context.Context, ct *contracts.Contract) (*contracts.Contract, error) {
	var result contracts.Contract
	if err := c.put(ctx, apiPath("contracts"), ct, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListContracts(ctx context.Context, companyID, employeeID string) ([]contracts.Contract, error) {
	params := url.Values{}
	if companyID != "" {
		params.Set("empresa_id", companyID)
	}
	if employeeID != "" {
		params.Set("funcionario_id", employeeID)
	}
	var result []contracts.Contract
	if err := c.get(ctx, withQuery(apiPath("contracts"), params), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Assistant

func (c *Client) Ask(ctx context.Context, prompt string, year int) (*assistant.Reply, error) {
	var result assistant.Reply
	body := map[string]any{"prompt": prompt, "year": year}
	if err := c.post(ctx, apiPath("assistant", "ask"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ExtractInvoice(ctx context.Context, text string) (*documents.Invoice, error) {
	var result documents.Invoice
	if err := c.post(ctx, apiPath("assistant", "invoice"), map[string]string{"text": text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Settings mirrors the server's configuration view.
type Settings struct {
	Company struct {
		Name     string `json:"name"`
		NIF      string `json:"nif"`
		Currency string `json:"currency"`
	} `json:"company"`
	Taxes struct {
		INSSRate         string        `json:"inss_rate"`
		EmployerINSSRate string        `json:"employer_inss_rate"`
		VATRate          string        `json:"vat_rate"`
		IRTBrackets      []tax.Bracket `json:"irt_brackets"`
	} `json:"taxes"`
	Accounts classify.AccountMap `json:"accounts"`
}

func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var result Settings
	if err := c.get(ctx, apiPath("settings"), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+apiPath("settings"), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

// getRaw returns the body as is, for spreadsheet downloads.
func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, apiErrorFrom(resp.StatusCode, bodyBytes)
	}
	return bodyBytes, nil
}

func (c *Client) del(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, nil)
}

func (c *Client) patch(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "PATCH", path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "PUT", path, body, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "POST", path, body, result)
}

func (c *Client) send(ctx context.Context, method, path string, body any, result any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, result)
}

type apiError struct {
	Error string `json:"error"`
	UnbalancedOpening
}

func apiErrorFrom(status int, body []byte) error {
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		e := &APIError{StatusCode: status, Message: apiErr.Error}
		if !apiErr.Difference.IsZero() {
			u := apiErr.UnbalancedOpening
			e.Unbalanced = &u
		}
		return e
	}
	return &APIError{StatusCode: status, Message: string(body)}
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiErrorFrom(resp.StatusCode, bodyBytes)
	}

	if result != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
