package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/store"
)

type createTransactionRequest struct {
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" validate:"required"`
	Entries     []struct {
		AccountCode string          `json:"account_code" validate:"required"`
		Debit       decimal.Decimal `json:"debit"`
		Credit      decimal.Decimal `json:"credit"`
		Memo        string          `json:"memo"`
	} `json:"entries" validate:"min=2,dive"`
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	txn := &ledger.Transaction{
		Description: req.Description,
		SourceKind:  ledger.SourceManual,
	}
	if req.Date != "" {
		txn.Date, _ = time.Parse("2006-01-02", req.Date)
	}
	for _, e := range req.Entries {
		txn.Entries = append(txn.Entries, ledger.Entry{
			AccountCode: e.AccountCode,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Memo:        e.Memo,
		})
	}

	if err := s.store.CreateTransaction(r.Context(), txn); err != nil {
		s.fail(w, r, err)
		return
	}

	created, err := s.store.GetTransaction(r.Context(), txn.ID)
	if err != nil {
		writeJSON(w, http.StatusCreated, txn)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TxnFilter{
		AccountCode: q.Get("account"),
		SourceKind:  q.Get("kind"),
	}
	var err error
	if filter.From, err = dateParam(r, "from"); err != nil {
		badRequest(w, err)
		return
	}
	if filter.To, err = dateParam(r, "to"); err != nil {
		badRequest(w, err)
		return
	}
	if filter.Limit, err = intParam(r, "limit", 100); err != nil {
		badRequest(w, err)
		return
	}
	if filter.Offset, err = intParam(r, "offset", 0); err != nil {
		badRequest(w, err)
		return
	}

	txns, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.store.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}
