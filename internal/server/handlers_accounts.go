package server

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/store"
)

type accountRequest struct {
	Code        string             `json:"code" validate:"required"`
	Description string             `json:"description" validate:"required"`
	Type        ledger.AccountType `json:"type,omitempty" validate:"omitempty,oneof=CLASSE GRUPO SUBGRUPO CONTA SUBCONTA"`
	Nature      ledger.Nature      `json:"nature,omitempty" validate:"omitempty,oneof=DEBITO CREDITO AMBOS"`
}

func (req accountRequest) account() *ledger.Account {
	return &ledger.Account{
		Code:        req.Code,
		Description: req.Description,
		Type:        req.Type,
		Nature:      req.Nature,
	}
}

func codeParam(r *http.Request) string {
	code, _ := url.PathUnescape(chi.URLParam(r, "code"))
	return code
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	acct := req.account()
	if err := s.store.CreateAccount(r.Context(), acct); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.store.GetAccount(r.Context(), acct.Code)
	if err != nil {
		writeJSON(w, http.StatusCreated, acct)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		badRequest(w, err)
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		badRequest(w, err)
		return
	}
	filter := store.AccountFilter{
		Prefix: r.URL.Query().Get("prefix"),
		Type:   r.URL.Query().Get("type"),
		Limit:  limit,
		Offset: offset,
	}
	accounts, err := s.store.ListAccounts(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// searchAccounts backs the account autocomplete.
func (s *Server) searchAccounts(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 10)
	if err != nil {
		badRequest(w, err)
		return
	}
	chart, err := s.store.LoadChart(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	found := chart.Search(r.URL.Query().Get("q"), limit)
	if found == nil {
		found = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.store.GetAccount(r.Context(), codeParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) listChildren(w http.ResponseWriter, r *http.Request) {
	code := codeParam(r)
	chart, err := s.store.LoadChart(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !chart.Exists(code) {
		s.fail(w, r, ledger.ErrAccountNotFound)
		return
	}
	children := chart.Children(code)
	if children == nil {
		children = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	acct := req.account()
	if err := s.store.UpdateAccount(r.Context(), codeParam(r), acct); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAccount(r.Context(), codeParam(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
