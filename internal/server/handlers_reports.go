package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simonvc/pgcledger/internal/ledger"
)

func yearParam(r *http.Request) (int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return 0, fmt.Errorf("invalid year: %q", chi.URLParam(r, "year"))
	}
	return year, nil
}

func (s *Server) listOpening(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	rows, err := s.store.ListOpeningBalances(r.Context(), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type openingRequest struct {
	Rows []struct {
		AccountCode string          `json:"account_code" validate:"required"`
		Debit       decimal.Decimal `json:"debit"`
		Credit      decimal.Decimal `json:"credit"`
	} `json:"rows" validate:"dive"`
}

// saveOpening replaces the opening balance of a year. An unbalanced set is
// answered with 422 and the totals.
func (s *Server) saveOpening(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req openingRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	rows := make([]ledger.OpeningBalance, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, ledger.OpeningBalance{
			AccountCode: row.AccountCode,
			Year:        year,
			Debit:       row.Debit,
			Credit:      row.Credit,
		})
	}
	if err := s.store.SaveOpeningBalances(r.Context(), year, rows); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("opening balance saved", zap.Int("year", year), zap.Int("rows", len(rows)))
	writeJSON(w, http.StatusOK, rows)
}

// balanceteParams reads year, from and to, defaulting to the whole current
// year.
func balanceteParams(r *http.Request) (year, from, to int, err error) {
	if year, err = intParam(r, "year", currentYear()); err != nil {
		return
	}
	if from, err = intParam(r, "from", 1); err != nil {
		return
	}
	to, err = intParam(r, "to", 12)
	return
}

func (s *Server) loadBalancete(r *http.Request) (*ledger.Balancete, error) {
	year, from, to, err := balanceteParams(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidPeriod, err)
	}
	return s.store.Balancete(r.Context(), year, from, to)
}

func (s *Server) balancete(w http.ResponseWriter, r *http.Request) {
	b, err := s.loadBalancete(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) loadExtract(r *http.Request) (*ledger.Extract, error) {
	year, err := intParam(r, "year", currentYear())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidPeriod, err)
	}
	code := r.URL.Query().Get("account")
	if code == "" {
		return nil, fmt.Errorf("%w: account is required", ledger.ErrInvalidAccountCode)
	}
	return s.store.Extract(r.Context(), code, year)
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	ex, err := s.loadExtract(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}
