package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/pgcledger/internal/contracts"
)

func (s *Server) upsertContract(w http.ResponseWriter, r *http.Request) {
	var c contracts.Contract
	if err := s.decode(r, &c); err != nil {
		badRequest(w, err)
		return
	}
	c.ID = ""
	if err := s.store.UpsertContract(r.Context(), &c); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) listContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.store.ListContracts(r.Context(), q.Get("empresa_id"), q.Get("funcionario_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getContract(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
