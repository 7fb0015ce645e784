package server

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simonvc/pgcledger/internal/store"
)

func (s *Server) listVAT(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := s.store.ListVATSettlements(r.Context(), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// computeVAT returns the registered settlement of the month when there is
// one, otherwise a fresh computation with the adjustments in the query.
func (s *Server) computeVAT(w http.ResponseWriter, r *http.Request) {
	year, month, err := period(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	if st, err := s.store.GetVATSettlement(r.Context(), year, month); err == nil {
		writeJSON(w, http.StatusOK, st)
		return
	}
	salesAdjust, err := decimalParam(r, "sales_adjust")
	if err != nil {
		badRequest(w, err)
		return
	}
	purchaseAdjust, err := decimalParam(r, "purchase_adjust")
	if err != nil {
		badRequest(w, err)
		return
	}
	st, err := s.store.ComputeVAT(r.Context(), year, month, salesAdjust, purchaseAdjust)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type registerVATRequest struct {
	SalesAdjust    decimal.Decimal `json:"sales_adjust"`
	PurchaseAdjust decimal.Decimal `json:"purchase_adjust"`
	// Post writes the closing journal transaction with the settlement.
	Post bool `json:"post"`
}

func (s *Server) registerVAT(w http.ResponseWriter, r *http.Request) {
	year, month, err := period(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req registerVATRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	var post *store.VATPosting
	if req.Post {
		post = &store.VATPosting{
			OutputAccount:     s.cfg.Accounts.OutputVAT,
			InputAccount:      s.cfg.Accounts.InputVAT,
			SettlementAccount: s.cfg.Accounts.VATSettlement,
		}
	}
	st, err := s.store.RegisterVAT(r.Context(), year, month, req.SalesAdjust, req.PurchaseAdjust, post)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("vat settlement registered",
		zap.String("id", st.ID),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.String("balance", st.Balance.StringFixed(2)),
		zap.String("label", st.Label),
		zap.String("transaction_id", st.TransactionID))
	writeJSON(w, http.StatusCreated, st)
}
