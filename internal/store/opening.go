package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simonvc/pgcledger/internal/ledger"
)

// SaveOpeningBalances replaces the opening balance of a year. The rows are
// validated as a whole first and nothing is written when they do not
// balance.
func (s *Store) SaveOpeningBalances(ctx context.Context, year int, rows []ledger.OpeningBalance) error {
	for i := range rows {
		rows[i].Year = year
		rows[i].DeriveBalanceType()
	}
	if err := ledger.ValidateOpening(year, rows); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		chart, err := loadChart(ctx, tx)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if !chart.Exists(r.AccountCode) {
				return fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, r.AccountCode)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM opening_balances WHERE year = ?`, year); err != nil {
			return fmt.Errorf("clear opening balances: %w", err)
		}
		for _, r := range rows {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO opening_balances (year, account_code, debit, credit, balance_type) VALUES (?, ?, ?, ?, ?)`,
				year, r.AccountCode, r.Debit.String(), r.Credit.String(), string(r.BalanceType),
			)
			if err != nil {
				return fmt.Errorf("insert opening balance %s: %w", r.AccountCode, err)
			}
		}
		return nil
	})
}

func (s *Store) ListOpeningBalances(ctx context.Context, year int) ([]ledger.OpeningBalance, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT account_code, year, debit, credit, balance_type FROM opening_balances WHERE year = ? ORDER BY account_code`, year)
	if err != nil {
		return nil, fmt.Errorf("list opening balances: %w", err)
	}
	defer rows.Close()

	out := []ledger.OpeningBalance{}
	for rows.Next() {
		var o ledger.OpeningBalance
		if err := rows.Scan(&o.AccountCode, &o.Year, &o.Debit, &o.Credit, &o.BalanceType); err != nil {
			return nil, fmt.Errorf("scan opening balance: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
