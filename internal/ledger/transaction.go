package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind identifies what produced a journal transaction.
type SourceKind string

const (
	SourceManual         SourceKind = "MANUAL"
	SourceSales          SourceKind = "SALES"
	SourcePurchase       SourceKind = "PURCHASE"
	SourcePayroll        SourceKind = "PAYROLL"
	SourcePayrollPayment SourceKind = "PAYROLL_PAYMENT"
	SourceVATSettlement  SourceKind = "VAT_SETTLEMENT"
)

type Entry struct {
	ID            int64           `json:"id,omitempty"`
	TransactionID string          `json:"transaction_id"`
	AccountCode   string          `json:"account_code"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Memo          string          `json:"memo,omitempty"`
}

type Transaction struct {
	ID          string     `json:"id"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description"`
	SourceKind  SourceKind `json:"source_kind"`
	SourceID    string     `json:"source_id,omitempty"`
	Entries     []Entry    `json:"entries"`
	Finalized   bool       `json:"finalized"`
	PostedAt    time.Time  `json:"posted_at"`
}

// Totals returns the debit and credit sums of the transaction.
func (t *Transaction) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range t.Entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}

// Validate checks transaction invariants: a description, at least 2
// entries, one positive side per entry, and equal debit and credit totals.
func (t *Transaction) Validate() error {
	if t.Description == "" {
		return ErrEmptyDescription
	}
	if len(t.Entries) < 2 {
		return ErrTooFewEntries
	}
	for i, e := range t.Entries {
		if !ValidCode(e.AccountCode) {
			return fmt.Errorf("entry %d: %w: %q", i, ErrInvalidAccountCode, e.AccountCode)
		}
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return fmt.Errorf("entry %d: %w", i, ErrNegativeAmount)
		}
		if e.Debit.IsPositive() == e.Credit.IsPositive() {
			return fmt.Errorf("entry %d (%s): %w", i, e.AccountCode, ErrInvalidEntry)
		}
	}
	debit, credit := t.Totals()
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debit %s, credit %s", ErrUnbalancedTransaction, debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}
