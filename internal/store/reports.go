package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/ledger"
)

// MovementTotals sums the journal entries per account for transactions
// dated in [from, to).
func (s *Store) MovementTotals(ctx context.Context, from, to time.Time) ([]ledger.AccountTotal, error) {
	moves, err := s.movements(ctx, "", from, to)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*ledger.AccountTotal)
	var order []string
	for _, m := range moves {
		t, ok := byCode[m.AccountCode]
		if !ok {
			t = &ledger.AccountTotal{Code: m.AccountCode}
			byCode[m.AccountCode] = t
			order = append(order, m.AccountCode)
		}
		t.Debit = t.Debit.Add(m.Debit)
		t.Credit = t.Credit.Add(m.Credit)
	}
	out := make([]ledger.AccountTotal, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out, nil
}

// Balancete builds the trial balance of months fromMonth..toMonth of a
// year. Movements of the year before fromMonth are carried into the
// opening columns.
func (s *Store) Balancete(ctx context.Context, year, fromMonth, toMonth int) (*ledger.Balancete, error) {
	if fromMonth < 1 || toMonth > 12 || fromMonth > toMonth {
		return nil, fmt.Errorf("%w: months %d-%d", ledger.ErrInvalidPeriod, fromMonth, toMonth)
	}
	accounts, err := s.ListAccounts(ctx, AccountFilter{})
	if err != nil {
		return nil, err
	}
	opening, err := s.ListOpeningBalances(ctx, year)
	if err != nil {
		return nil, err
	}

	yearStart, _ := monthRange(year, 1)
	periodStart, _ := monthRange(year, fromMonth)
	_, periodEnd := monthRange(year, toMonth)

	if periodStart.After(yearStart) {
		prior, err := s.MovementTotals(ctx, yearStart, periodStart)
		if err != nil {
			return nil, err
		}
		opening = carryForward(opening, prior, year)
	}

	movements, err := s.MovementTotals(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	return ledger.BuildBalancete(year, fromMonth, toMonth, accounts, opening, movements), nil
}

func carryForward(opening []ledger.OpeningBalance, prior []ledger.AccountTotal, year int) []ledger.OpeningBalance {
	idx := make(map[string]int, len(opening))
	for i, o := range opening {
		idx[o.AccountCode] = i
	}
	for _, p := range prior {
		i, ok := idx[p.Code]
		if !ok {
			opening = append(opening, ledger.OpeningBalance{AccountCode: p.Code, Year: year, Debit: decimal.Zero, Credit: decimal.Zero})
			i = len(opening) - 1
			idx[p.Code] = i
		}
		opening[i].Debit = opening[i].Debit.Add(p.Debit)
		opening[i].Credit = opening[i].Credit.Add(p.Credit)
	}
	return opening
}

// Extract lists the movements of an account and its sub-accounts in a
// year, starting from the opening balance.
func (s *Store) Extract(ctx context.Context, code string, year int) (*ledger.Extract, error) {
	acct, err := s.GetAccount(ctx, code)
	if err != nil {
		return nil, err
	}
	opening, err := s.ListOpeningBalances(ctx, year)
	if err != nil {
		return nil, err
	}
	from, _ := monthRange(year, 1)
	moves, err := s.movements(ctx, code, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	var lines []ledger.ExtractLine
	for _, m := range moves {
		if m.AccountCode != code && !ledger.IsDescendant(m.AccountCode, code) {
			continue
		}
		lines = append(lines, ledger.ExtractLine{
			Date:          m.Date,
			TransactionID: m.TransactionID,
			Description:   m.Description,
			AccountCode:   m.AccountCode,
			Debit:         m.Debit,
			Credit:        m.Credit,
		})
	}
	ex := ledger.BuildExtract(*acct, year, opening, lines)
	if ex.Lines == nil {
		ex.Lines = []ledger.ExtractLine{}
	}
	return ex, nil
}
