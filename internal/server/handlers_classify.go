package server

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/ledger"
)

var kindNames = map[string]ledger.SourceKind{
	"sales":           ledger.SourceSales,
	"purchases":       ledger.SourcePurchase,
	"payroll":         ledger.SourcePayroll,
	"payroll-payment": ledger.SourcePayrollPayment,
}

// sourceKind accepts both the URL names and the stored kind values.
func sourceKind(name string) (ledger.SourceKind, error) {
	if k, ok := kindNames[strings.ToLower(name)]; ok {
		return k, nil
	}
	for _, k := range kindNames {
		if string(k) == strings.ToUpper(name) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", classify.ErrUnknownSource, name)
}

type classificationView struct {
	Entries    []classify.Entry  `json:"entries"`
	Unresolved []classify.Result `json:"unresolved"`
}

type classifyOverride struct {
	Key     classify.Key `json:"key"`
	Role    string       `json:"role" validate:"required"`
	Account string       `json:"account" validate:"required"`
}

type classifyRequest struct {
	// Documents restricts the session to these document ids.
	Documents []string           `json:"documents,omitempty"`
	Auto      bool               `json:"auto"`
	Selected  []classify.Key     `json:"selected,omitempty"`
	Overrides []classifyOverride `json:"overrides,omitempty" validate:"dive"`
}

type previewResponse struct {
	classificationView
	Ready   bool            `json:"ready"`
	Problem string          `json:"problem,omitempty"`
	Batch   *classify.Batch `json:"batch,omitempty"`
}

// session rebuilds the classification screen of a kind from the documents
// that are still pending.
func (s *Server) session(r *http.Request, only []string) (*classify.Session, error) {
	kind, err := sourceKind(chi.URLParam(r, "kind"))
	if err != nil {
		return nil, err
	}
	sources, err := s.store.PendingSources(r.Context(), kind)
	if err != nil {
		return nil, err
	}
	if len(only) > 0 {
		sources = slices.DeleteFunc(sources, func(src classify.Source) bool {
			return !slices.Contains(only, src.DocumentID())
		})
	}
	chart, err := s.store.LoadChart(r.Context())
	if err != nil {
		return nil, err
	}
	return classify.NewSession(chart, s.rules, s.log.Named("classify"), sources...), nil
}

func view(sess *classify.Session, extra []classify.Result) classificationView {
	v := classificationView{Entries: sess.Entries(), Unresolved: sess.Unresolved()}
	v.Unresolved = append(v.Unresolved, extra...)
	if v.Unresolved == nil {
		v.Unresolved = []classify.Result{}
	}
	return v
}

func (s *Server) classificationEntries(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view(sess, nil))
}

// apply replays the user's choices on a fresh session.
func (s *Server) apply(r *http.Request) (*classify.Session, []classify.Result, error) {
	var req classifyRequest
	if err := s.decode(r, &req); err != nil {
		return nil, nil, err
	}
	sess, err := s.session(r, req.Documents)
	if err != nil {
		return nil, nil, err
	}
	var unresolved []classify.Result
	if req.Auto || len(req.Selected) > 0 {
		unresolved = sess.AutoClassify(req.Selected...)
	}
	for _, o := range req.Overrides {
		if err := sess.SetAccount(o.Key, o.Role, o.Account); err != nil {
			return nil, nil, err
		}
	}
	return sess, unresolved, nil
}

func (s *Server) previewClassification(w http.ResponseWriter, r *http.Request) {
	sess, unresolved, err := s.apply(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := previewResponse{classificationView: view(sess, unresolved)}
	batch, err := sess.Prepare()
	if err != nil {
		resp.Problem = err.Error()
	} else {
		resp.Ready = true
		resp.Batch = batch
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) postClassification(w http.ResponseWriter, r *http.Request) {
	sess, _, err := s.apply(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	batch, err := sess.Post(r.Context(), s.store)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, batch)
}
