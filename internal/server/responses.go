package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simonvc/pgcledger/internal/assistant"
	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/contracts"
	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/payroll"
	"github.com/simonvc/pgcledger/internal/tax"
	"github.com/simonvc/pgcledger/internal/vat"
)

// errBadRequest marks input that could not be parsed.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// unbalancedResponse is returned when an opening balance is rejected.
type unbalancedResponse struct {
	Error       string          `json:"error"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Difference  decimal.Decimal `json:"difference"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail writes err with the status mapError assigns to it. Server errors
// are logged since the client only sees the message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var unbalanced *ledger.UnbalancedOpeningError
	if errors.As(err, &unbalanced) {
		writeJSON(w, http.StatusUnprocessableEntity, unbalancedResponse{
			Error:       err.Error(),
			TotalDebit:  unbalanced.TotalDebit,
			TotalCredit: unbalanced.TotalCredit,
			Difference:  unbalanced.Difference(),
		})
		return
	}
	status := mapError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func mapError(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, documents.ErrInvoiceNotFound),
		errors.Is(err, documents.ErrPurchaseNotFound),
		errors.Is(err, payroll.ErrEmployeeNotFound),
		errors.Is(err, payroll.ErrTransactionNotFound),
		errors.Is(err, payroll.ErrRunNotFound),
		errors.Is(err, classify.ErrEntryNotFound),
		errors.Is(err, vat.ErrNotFound),
		errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateAccount),
		errors.Is(err, ledger.ErrHasChildren),
		errors.Is(err, ledger.ErrAccountInUse),
		errors.Is(err, documents.ErrDuplicateDocument),
		errors.Is(err, documents.ErrStatusTransition),
		errors.Is(err, documents.ErrDocumentPosted),
		errors.Is(err, payroll.ErrAlreadyCertified),
		errors.Is(err, payroll.ErrAlreadyProcessed),
		errors.Is(err, classify.ErrAlreadyPosted),
		errors.Is(err, vat.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidAccountCode),
		errors.Is(err, ledger.ErrInvalidAccountType),
		errors.Is(err, ledger.ErrInvalidNature),
		errors.Is(err, ledger.ErrEmptyDescription),
		errors.Is(err, ledger.ErrTooFewEntries),
		errors.Is(err, ledger.ErrInvalidEntry),
		errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, ledger.ErrInvalidPeriod),
		errors.Is(err, ledger.ErrDuplicateOpeningRow),
		errors.Is(err, documents.ErrNoItems),
		errors.Is(err, documents.ErrInvalidQuantity),
		errors.Is(err, documents.ErrNegativeAmount),
		errors.Is(err, documents.ErrInvalidType),
		errors.Is(err, documents.ErrInvalidStatus),
		errors.Is(err, documents.ErrInvalidTaxRate),
		errors.Is(err, documents.ErrMissingParty),
		errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrInvalidType),
		errors.Is(err, payroll.ErrNegativeAmount),
		errors.Is(err, payroll.ErrEmptyName),
		errors.Is(err, classify.ErrUnknownRole),
		errors.Is(err, classify.ErrUnknownSource),
		errors.Is(err, vat.ErrInvalidPeriod),
		errors.Is(err, contracts.ErrInvalidDates),
		errors.Is(err, contracts.ErrInvalidType),
		errors.Is(err, contracts.ErrMissingField),
		errors.Is(err, assistant.ErrEmptyPrompt),
		errors.Is(err, tax.ErrInvalidBrackets):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrUnbalancedTransaction),
		errors.Is(err, ledger.ErrUnbalancedOpening),
		errors.Is(err, classify.ErrPendingEntries),
		errors.Is(err, classify.ErrNothingToPost),
		errors.Is(err, classify.ErrUnknownAccount),
		errors.Is(err, classify.ErrUnresolvedEntry),
		errors.Is(err, payroll.ErrNothingToCertify):
		return http.StatusUnprocessableEntity
	case errors.Is(err, assistant.ErrNotConfigured),
		errors.Is(err, assistant.ErrBadResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v and runs the struct validator on it.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return s.validate.Struct(v)
}

// badRequest reports a malformed request that never reached the domain.
func badRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, err.Error())
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

func decimalParam(r *http.Request, name string) (decimal.Decimal, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %q", name, v)
	}
	return d, nil
}

func dateParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q", name, v)
	}
	return t, nil
}

// period reads the {year} and {month} path parameters.
func period(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year: %q", chi.URLParam(r, "year"))
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month: %q", chi.URLParam(r, "month"))
	}
	return year, month, nil
}

func currentYear() int { return time.Now().Year() }
