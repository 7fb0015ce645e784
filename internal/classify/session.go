package classify

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simonvc/pgcledger/internal/ledger"
)

// Batch is what a successful Post hands to the store: the journal
// transactions, the client or supplier sub-accounts they need, and the
// documents that become processed.
type Batch struct {
	Transactions []ledger.Transaction `json:"transactions"`
	NewAccounts  []ledger.Account     `json:"new_accounts"`
	Processed    []Key                `json:"processed"`
}

// Committer persists a batch atomically.
type Committer interface {
	CommitClassification(ctx context.Context, b *Batch) error
}

// Session holds the entries of one classification screen from the moment
// they are built until they are posted.
type Session struct {
	rules      Rules
	chart      *ledger.Chart
	sources    map[Key]Source
	entries    []*Entry
	unresolved []Result
	log        *zap.Logger
}

// NewSession builds PENDING entries for every line of the given sources.
// Lines that cannot be resolved are kept in Unresolved.
func NewSession(chart *ledger.Chart, rules Rules, log *zap.Logger, sources ...Source) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		rules:   rules,
		chart:   chart,
		sources: make(map[Key]Source, len(sources)),
		log:     log,
	}
	for _, src := range sources {
		s.sources[SourceKey(src)] = src
		for _, res := range rules.Classify(src) {
			if res.IsOk() {
				s.entries = append(s.entries, res.Entry)
			} else {
				s.unresolved = append(s.unresolved, res)
			}
		}
	}
	return s
}

// Entries returns copies of the current entries.
func (s *Session) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		c := *e
		c.Lines = slices.Clone(e.Lines)
		out = append(out, c)
	}
	return out
}

// Unresolved lists the lines that could not be turned into entries.
func (s *Session) Unresolved() []Result {
	return slices.Clone(s.unresolved)
}

func (s *Session) find(key Key) (*Entry, error) {
	for _, e := range s.entries {
		if e.Key == key {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, key)
}

// AutoClassify applies the rules again to every PENDING entry and to the
// selected ones, marking them CLASSIFIED. Entries the user already
// classified by hand are left alone unless selected. Lines whose source
// can no longer be resolved are returned and stay as they were.
func (s *Session) AutoClassify(selected ...Key) []Result {
	var unresolved []Result
	for _, e := range s.entries {
		if e.Status != StatusPending && !slices.Contains(selected, e.Key) {
			continue
		}
		src, ok := s.sources[Key{Kind: e.Key.Kind, DocumentID: e.Key.DocumentID}]
		if !ok {
			unresolved = append(unresolved, Unresolved(e.Key, "document %s not found", e.Key.DocumentID))
			continue
		}
		res := s.rules.ClassifyItem(src, e.Key.ItemID)
		if !res.IsOk() {
			unresolved = append(unresolved, res)
			continue
		}
		*e = *res.Entry
		e.Status = StatusClassified
	}
	return unresolved
}

// SetAccount changes the account of one line of an entry and marks the
// entry CLASSIFIED. The code must exist in the chart.
func (s *Session) SetAccount(key Key, role, code string) error {
	e, err := s.find(key)
	if err != nil {
		return err
	}
	l, ok := e.Line(role)
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownRole, role, key)
	}
	if !ledger.ValidCode(code) {
		return fmt.Errorf("%w: %q", ledger.ErrInvalidAccountCode, code)
	}
	if !s.chart.Exists(code) {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, code)
	}
	l.Account = code
	e.Status = StatusClassified
	return nil
}

// Prepare validates the session and builds the batch Post would commit,
// without committing it. Every entry must be CLASSIFIED and balance.
// Accounts missing from the chart are opened as sub-accounts when their
// parent exists.
func (s *Session) Prepare() (*Batch, error) {
	if len(s.entries) == 0 {
		return nil, ErrNothingToPost
	}
	pending := 0
	for _, e := range s.entries {
		if e.Status != StatusClassified {
			pending++
		}
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: %d of %d", ErrPendingEntries, pending, len(s.entries))
	}

	b := &Batch{}
	opened := make(map[string]bool)
	processed := make(map[Key]bool)
	now := time.Now().UTC()
	for _, e := range s.entries {
		tx, err := ToTransaction(*e)
		if err != nil {
			return nil, err
		}
		tx.ID = uuid.NewString()
		tx.PostedAt = now
		tx.Finalized = true
		for i := range tx.Entries {
			tx.Entries[i].TransactionID = tx.ID
		}
		for _, te := range tx.Entries {
			code := te.AccountCode
			if s.chart.Exists(code) || opened[code] {
				continue
			}
			parent := ledger.ParentCode(code)
			if !s.chart.Exists(parent) && !opened[parent] {
				return nil, fmt.Errorf("%s: %w: %s", e.Key, ErrUnknownAccount, code)
			}
			a := ledger.Account{Code: code, Description: e.Party}
			if a.Description == "" {
				a.Description = code
			}
			a.Normalize()
			b.NewAccounts = append(b.NewAccounts, a)
			opened[code] = true
		}
		b.Transactions = append(b.Transactions, tx)

		dk := Key{Kind: e.Key.Kind, DocumentID: e.Key.DocumentID}
		if !processed[dk] {
			processed[dk] = true
			b.Processed = append(b.Processed, dk)
		}
	}
	return b, nil
}

// Post validates the session and commits the batch. On success the
// entries are cleared and the new accounts join the chart. Nothing changes
// when validation or the commit fails.
func (s *Session) Post(ctx context.Context, c Committer) (*Batch, error) {
	b, err := s.Prepare()
	if err != nil {
		return nil, err
	}
	if err := c.CommitClassification(ctx, b); err != nil {
		return nil, fmt.Errorf("committing classification: %w", err)
	}
	for _, a := range b.NewAccounts {
		if _, err := s.chart.Add(a); err != nil {
			s.log.Warn("adding posted account to chart", zap.String("code", a.Code), zap.Error(err))
		}
	}
	s.entries = nil
	s.log.Info("classification posted",
		zap.Int("transactions", len(b.Transactions)),
		zap.Int("documents", len(b.Processed)),
		zap.Int("new_accounts", len(b.NewAccounts)))
	return b, nil
}
