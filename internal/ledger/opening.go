package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/money"
)

type BalanceType string

const (
	BalanceDebit  BalanceType = "DEBIT"
	BalanceCredit BalanceType = "CREDIT"
)

// OpeningBalance is the debit/credit snapshot of one account at the start
// of a fiscal year.
type OpeningBalance struct {
	AccountCode string          `json:"account_code"`
	Year        int             `json:"year"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	BalanceType BalanceType     `json:"balance_type"`
}

// DeriveBalanceType sets BalanceType: DEBIT when debit exceeds credit,
// CREDIT otherwise.
func (o *OpeningBalance) DeriveBalanceType() {
	if o.Debit.GreaterThan(o.Credit) {
		o.BalanceType = BalanceDebit
	} else {
		o.BalanceType = BalanceCredit
	}
}

// Net is debit minus credit.
func (o OpeningBalance) Net() decimal.Decimal {
	return o.Debit.Sub(o.Credit)
}

// UnbalancedOpeningError reports an opening balance whose sides differ by
// more than the rounding tolerance.
type UnbalancedOpeningError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedOpeningError) Difference() decimal.Decimal {
	return e.TotalDebit.Sub(e.TotalCredit).Abs()
}

func (e *UnbalancedOpeningError) Error() string {
	return fmt.Sprintf("%s: debit %s, credit %s, difference %s",
		ErrUnbalancedOpening, e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2), e.Difference().StringFixed(2))
}

func (e *UnbalancedOpeningError) Unwrap() error { return ErrUnbalancedOpening }

// ValidateOpening checks a full opening balance set for one year: known
// year, valid non-negative rows, no repeated account, and total debits equal
// to total credits within 0.01.
func ValidateOpening(year int, rows []OpeningBalance) error {
	if year < 1900 || year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	seen := make(map[string]bool, len(rows))
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, r := range rows {
		if !ValidCode(r.AccountCode) {
			return fmt.Errorf("%w: %q", ErrInvalidAccountCode, r.AccountCode)
		}
		if r.Debit.IsNegative() || r.Credit.IsNegative() {
			return fmt.Errorf("%s: %w", r.AccountCode, ErrNegativeAmount)
		}
		if seen[r.AccountCode] {
			return fmt.Errorf("%w: %s", ErrDuplicateOpeningRow, r.AccountCode)
		}
		seen[r.AccountCode] = true
		totalDebit = totalDebit.Add(r.Debit)
		totalCredit = totalCredit.Add(r.Credit)
	}
	if !money.WithinTolerance(totalDebit, totalCredit) {
		return &UnbalancedOpeningError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}
	return nil
}
