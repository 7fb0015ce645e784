package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/store"
)

func documentFilter(r *http.Request) (store.DocumentFilter, error) {
	f := store.DocumentFilter{Status: r.URL.Query().Get("status")}
	var err error
	if f.From, err = dateParam(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = dateParam(r, "to"); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(r, "limit", 0); err != nil {
		return f, err
	}
	f.Offset, err = intParam(r, "offset", 0)
	return f, err
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) createInvoice(w http.ResponseWriter, r *http.Request) {
	var inv documents.Invoice
	if err := s.decode(r, &inv); err != nil {
		badRequest(w, err)
		return
	}
	inv.ID = ""
	inv.ApplyDefaultRate(s.cfg.Taxes.VATRate)
	if err := s.store.CreateInvoice(r.Context(), &inv); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	filter, err := documentFilter(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := s.store.ListInvoices(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.store.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) setInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.SetInvoiceStatus(r.Context(), id, documents.InvoiceStatus(req.Status)); err != nil {
		s.fail(w, r, err)
		return
	}
	inv, err := s.store.GetInvoice(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) createPurchase(w http.ResponseWriter, r *http.Request) {
	var p documents.Purchase
	if err := s.decode(r, &p); err != nil {
		badRequest(w, err)
		return
	}
	p.ID = ""
	if err := s.store.CreatePurchase(r.Context(), &p); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listPurchases(w http.ResponseWriter, r *http.Request) {
	filter, err := documentFilter(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := s.store.ListPurchases(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getPurchase(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPurchase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) setPurchaseStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.SetPurchaseStatus(r.Context(), id, documents.PurchaseStatus(req.Status)); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.store.GetPurchase(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
