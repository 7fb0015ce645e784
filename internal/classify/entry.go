// Package classify turns source documents into journal postings: every
// document line becomes an entry with suggested PGC accounts that can be
// auto-classified or edited before it is posted to the ledger.
package classify

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/ledger"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusClassified Status = "CLASSIFIED"
)

// Line roles. Every entry has a debit and a credit line; the others appear
// depending on the source.
const (
	RoleDebit               = "debit"
	RoleCredit              = "credit"
	RoleVAT                 = "vat"
	RoleIRT                 = "irt"
	RoleINSS                = "inss"
	RoleAdvances            = "advances"
	RoleEmployerINSS        = "employer_inss"
	RoleEmployerINSSPayable = "employer_inss_payable"
)

// Key identifies an entry by the document and line it came from. ItemID is
// empty for entries built from a whole payroll run.
type Key struct {
	Kind       ledger.SourceKind `json:"kind"`
	DocumentID string            `json:"document_id"`
	ItemID     string            `json:"item_id,omitempty"`
}

func (k Key) String() string {
	if k.ItemID == "" {
		return fmt.Sprintf("%s:%s", k.Kind, k.DocumentID)
	}
	return fmt.Sprintf("%s:%s:%s", k.Kind, k.DocumentID, k.ItemID)
}

// Line is one side of an entry. Exactly one of Debit and Credit is set.
type Line struct {
	Role    string          `json:"role"`
	Account string          `json:"account"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// Entry is a classification row: one document line with its accounts.
type Entry struct {
	Key         Key       `json:"key"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	// Party names the client or supplier, used when a new sub-account has
	// to be opened for it.
	Party  string `json:"party,omitempty"`
	Lines  []Line `json:"lines"`
	Status Status `json:"status"`
}

// Line returns the line with the given role.
func (e *Entry) Line(role string) (*Line, bool) {
	for i := range e.Lines {
		if e.Lines[i].Role == role {
			return &e.Lines[i], true
		}
	}
	return nil, false
}

// Totals sums the debit and credit sides.
func (e *Entry) Totals() (debit, credit decimal.Decimal) {
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// ToTransaction builds the journal transaction of an entry. Lines with no
// amount are left out. The result is validated, so an unbalanced entry
// returns ledger.ErrUnbalancedTransaction.
func ToTransaction(e Entry) (ledger.Transaction, error) {
	tx := ledger.Transaction{
		Date:        e.Date,
		Description: e.Description,
		SourceKind:  e.Key.Kind,
		SourceID:    e.Key.String(),
		Entries:     []ledger.Entry{},
	}
	for _, l := range e.Lines {
		if l.Debit.IsZero() && l.Credit.IsZero() {
			continue
		}
		tx.Entries = append(tx.Entries, ledger.Entry{
			AccountCode: l.Account,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Memo:        l.Role,
		})
	}
	if err := tx.Validate(); err != nil {
		return ledger.Transaction{}, fmt.Errorf("%s: %w", e.Key, err)
	}
	return tx, nil
}

// Result is the outcome of classifying one document line: either an entry
// or the reason the line could not be resolved.
type Result struct {
	Key    Key    `json:"key"`
	Entry  *Entry `json:"entry,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func Ok(e Entry) Result {
	return Result{Key: e.Key, Entry: &e}
}

func Unresolved(key Key, format string, args ...any) Result {
	return Result{Key: key, Reason: fmt.Sprintf(format, args...)}
}

func (r Result) IsOk() bool { return r.Entry != nil }

func (r Result) Err() error {
	if r.IsOk() {
		return nil
	}
	return fmt.Errorf("%s: %w: %s", r.Key, ErrUnresolvedEntry, r.Reason)
}
