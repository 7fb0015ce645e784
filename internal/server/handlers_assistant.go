package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/config"
	"github.com/simonvc/pgcledger/internal/payroll"
	"github.com/simonvc/pgcledger/internal/vat"
)

type askRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Year   int    `json:"year,omitempty"`
}

// businessSummary is the context sent along with a question.
type businessSummary struct {
	Company      config.CompanyConfig `json:"company"`
	Year         int                  `json:"year"`
	TotalDebit   decimal.Decimal      `json:"total_debit"`
	TotalCredit  decimal.Decimal      `json:"total_credit"`
	Balanced     bool                 `json:"balanced"`
	VAT          []vat.Settlement     `json:"vat"`
	PayrollTotal []payrollSummary     `json:"payroll"`
}

type payrollSummary struct {
	Year   int            `json:"year"`
	Month  int            `json:"month"`
	Totals payroll.Totals `json:"totals"`
}

func (s *Server) summary(r *http.Request, year int) (*businessSummary, error) {
	b, err := s.store.Balancete(r.Context(), year, 1, 12)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListVATSettlements(r.Context(), year)
	if err != nil {
		return nil, err
	}
	runs, err := s.store.ListPayrollRuns(r.Context())
	if err != nil {
		return nil, err
	}
	sum := &businessSummary{
		Company:      s.cfg.Company,
		Year:         year,
		TotalDebit:   b.TotalDebit,
		TotalCredit:  b.TotalCredit,
		Balanced:     b.Balanced,
		VAT:          settlements,
		PayrollTotal: []payrollSummary{},
	}
	for _, run := range runs {
		if run.Year == year {
			sum.PayrollTotal = append(sum.PayrollTotal, payrollSummary{Year: run.Year, Month: run.Month, Totals: run.Totals})
		}
	}
	return sum, nil
}

// ask always answers 200: when the assistant fails the reply carries the
// fallback message.
func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Year == 0 {
		req.Year = currentYear()
	}
	sum, err := s.summary(r, req.Year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.assistant.Ask(r.Context(), req.Prompt, sum))
}

type extractInvoiceRequest struct {
	Text string `json:"text" validate:"required"`
}

// extractInvoice returns a draft invoice read from free text. Nothing is
// stored.
func (s *Server) extractInvoice(w http.ResponseWriter, r *http.Request) {
	var req extractInvoiceRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	inv, err := s.assistant.ExtractInvoice(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
