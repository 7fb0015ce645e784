package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/pgcledger/internal/ledger"
)

const accountColumns = `code, description, type, nature, parent_code, created_at`

// LoadChart reads every account into an in-memory chart.
func (s *Store) LoadChart(ctx context.Context) (*ledger.Chart, error) {
	return loadChart(ctx, s.reader)
}

func loadChart(ctx context.Context, q querier) (*ledger.Chart, error) {
	accounts, err := listAccounts(ctx, q, AccountFilter{})
	if err != nil {
		return nil, err
	}
	return ledger.NewChart(accounts)
}

func (s *Store) CreateAccount(ctx context.Context, acct *ledger.Account) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		chart, err := loadChart(ctx, tx)
		if err != nil {
			return err
		}
		added, err := chart.Add(*acct)
		if err != nil {
			return err
		}
		if err := insertAccount(ctx, tx, added); err != nil {
			return err
		}
		*acct = added
		return nil
	})
}

func insertAccount(ctx context.Context, tx *sql.Tx, a ledger.Account) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO pgc_accounts (code, description, type, nature, parent_code) VALUES (?, ?, ?, ?, ?)`,
		a.Code, a.Description, string(a.Type), string(a.Nature), a.ParentCode,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, code string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM pgc_accounts WHERE code = ?`, code)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context, filter AccountFilter) ([]ledger.Account, error) {
	return listAccounts(ctx, s.reader, filter)
}

func listAccounts(ctx context.Context, q querier, filter AccountFilter) ([]ledger.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM pgc_accounts WHERE 1=1`
	args := []any{}

	if filter.Prefix != "" {
		query += ` AND code LIKE ? || '%'`
		args = append(args, filter.Prefix)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}

	// Codes sort lexically here; callers that print the chart use
	// ledger.CompareCodes.
	query += ` ORDER BY code`
	query = addPaging(query, filter.Limit, filter.Offset)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []ledger.Account{}
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

// UpdateAccount edits the account stored under oldCode. A code change is
// refused when the account has sub-accounts or is referenced by journal
// entries or opening balances.
func (s *Store) UpdateAccount(ctx context.Context, oldCode string, acct *ledger.Account) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		chart, err := loadChart(ctx, tx)
		if err != nil {
			return err
		}
		updated, err := chart.Update(oldCode, *acct)
		if err != nil {
			return err
		}
		if updated.Code != oldCode {
			inUse, err := accountInUse(ctx, tx, oldCode)
			if err != nil {
				return err
			}
			if inUse {
				return fmt.Errorf("%w: %s", ledger.ErrAccountInUse, oldCode)
			}
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE pgc_accounts SET code = ?, description = ?, type = ?, nature = ?, parent_code = ? WHERE code = ?`,
			updated.Code, updated.Description, string(updated.Type), string(updated.Nature), updated.ParentCode, oldCode,
		)
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		*acct = updated
		return nil
	})
}

func (s *Store) DeleteAccount(ctx context.Context, code string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		chart, err := loadChart(ctx, tx)
		if err != nil {
			return err
		}
		if err := chart.Delete(code); err != nil {
			return err
		}
		inUse, err := accountInUse(ctx, tx, code)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("%w: %s", ledger.ErrAccountInUse, code)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pgc_accounts WHERE code = ?`, code); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
}

func accountInUse(ctx context.Context, q querier, code string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM entries WHERE account_code = ?) +
		        (SELECT COUNT(*) FROM opening_balances WHERE account_code = ?)`, code, code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check account usage: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*ledger.Account, error) {
	var acct ledger.Account
	var createdAt string
	err := row.Scan(&acct.Code, &acct.Description, &acct.Type, &acct.Nature, &acct.ParentCode, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	acct.CreatedAt = parseTimestamp(createdAt)
	return &acct, nil
}
