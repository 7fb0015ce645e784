package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/ledger"
)

// CreateTransaction posts a manual journal transaction.
func (s *Store) CreateTransaction(ctx context.Context, txn *ledger.Transaction) error {
	if txn.SourceKind == "" {
		txn.SourceKind = ledger.SourceManual
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		chart, err := loadChart(ctx, tx)
		if err != nil {
			return err
		}
		for _, e := range txn.Entries {
			if !chart.Exists(e.AccountCode) {
				return fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, e.AccountCode)
			}
		}
		return insertTransaction(ctx, tx, txn)
	})
}

// insertTransaction writes a transaction and its entries, then finalizes
// it so the balance trigger runs.
func insertTransaction(ctx context.Context, tx *sql.Tx, txn *ledger.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.Must(uuid.NewV7()).String()
	}
	if txn.PostedAt.IsZero() {
		txn.PostedAt = time.Now().UTC()
	}
	if txn.Date.IsZero() {
		txn.Date = txn.PostedAt
	}
	if err := txn.Validate(); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, date, description, source_kind, source_id, posted_at) VALUES (?, ?, ?, ?, ?, ?)`,
		txn.ID, formatDate(txn.Date), txn.Description, string(txn.SourceKind), txn.SourceID, formatTimestamp(txn.PostedAt),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	for i := range txn.Entries {
		txn.Entries[i].TransactionID = txn.ID
		e := txn.Entries[i]
		res, err := tx.ExecContext(ctx,
			`INSERT INTO entries (transaction_id, account_code, debit, credit, memo) VALUES (?, ?, ?, ?, ?)`,
			txn.ID, e.AccountCode, e.Debit.String(), e.Credit.String(), e.Memo,
		)
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
		txn.Entries[i].ID, _ = res.LastInsertId()
	}

	_, err = tx.ExecContext(ctx, `UPDATE transactions SET finalized = 1 WHERE id = ?`, txn.ID)
	if err != nil {
		return fmt.Errorf("finalize transaction: %w", err)
	}
	txn.Finalized = true
	return nil
}

const transactionColumns = `t.id, t.date, t.description, t.source_kind, t.source_id, t.finalized, t.posted_at`

func (s *Store) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	row := s.reader.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	entries, err := s.getEntriesForTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	txn.Entries = entries
	return txn, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter TxnFilter) ([]ledger.Transaction, error) {
	query := `SELECT DISTINCT ` + transactionColumns + ` FROM transactions t`
	args := []any{}

	if filter.AccountCode != "" {
		query += ` JOIN entries e ON e.transaction_id = t.id WHERE (e.account_code = ? OR e.account_code LIKE ? || '.%')`
		args = append(args, filter.AccountCode, filter.AccountCode)
	} else {
		query += ` WHERE 1=1`
	}
	if filter.SourceKind != "" {
		query += ` AND t.source_kind = ?`
		args = append(args, filter.SourceKind)
	}
	if !filter.From.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		query += ` AND t.date < ?`
		args = append(args, formatDate(filter.To))
	}

	query += ` AND t.finalized = 1 ORDER BY t.date DESC, t.posted_at DESC`
	query = addPaging(query, filter.Limit, filter.Offset)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []ledger.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range txns {
		entries, err := s.getEntriesForTransaction(ctx, txns[i].ID)
		if err != nil {
			return nil, err
		}
		txns[i].Entries = entries
	}
	return txns, nil
}

func (s *Store) getEntriesForTransaction(ctx context.Context, txnID string) ([]ledger.Entry, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, transaction_id, account_code, debit, credit, memo FROM entries WHERE transaction_id = ? ORDER BY id`,
		txnID,
	)
	if err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}
	defer rows.Close()

	entries := []ledger.Entry{}
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountCode, &e.Debit, &e.Credit, &e.Memo); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanTransaction(row rowScanner) (*ledger.Transaction, error) {
	var txn ledger.Transaction
	var date, postedAt string
	var finalized int
	if err := row.Scan(&txn.ID, &date, &txn.Description, &txn.SourceKind, &txn.SourceID, &finalized, &postedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	txn.Date = parseDate(date)
	txn.Finalized = finalized == 1
	txn.PostedAt = parseTimestamp(postedAt)
	return &txn, nil
}

// CommitClassification stores a posted classification batch atomically:
// the sub-accounts it opens, its transactions and the processed source
// documents. A document that was already posted aborts the whole batch.
func (s *Store) CommitClassification(ctx context.Context, b *classify.Batch) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, k := range b.Processed {
			done, err := isProcessed(ctx, tx, k)
			if err != nil {
				return err
			}
			if done {
				return fmt.Errorf("%w: %s", classify.ErrAlreadyPosted, k)
			}
		}
		for _, a := range b.NewAccounts {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO pgc_accounts (code, description, type, nature, parent_code) VALUES (?, ?, ?, ?, ?)`,
				a.Code, a.Description, string(a.Type), string(a.Nature), a.ParentCode,
			); err != nil {
				return fmt.Errorf("open account %s: %w", a.Code, err)
			}
		}
		for i := range b.Transactions {
			if err := insertTransaction(ctx, tx, &b.Transactions[i]); err != nil {
				return fmt.Errorf("transaction %s: %w", b.Transactions[i].SourceID, err)
			}
		}
		for _, k := range b.Processed {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO processed_sources (kind, document_id) VALUES (?, ?)`,
				string(k.Kind), k.DocumentID,
			); err != nil {
				return fmt.Errorf("mark processed %s: %w", k, err)
			}
		}
		return nil
	})
}

func isProcessed(ctx context.Context, q querier, k classify.Key) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processed_sources WHERE kind = ? AND document_id = ?`,
		string(k.Kind), k.DocumentID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check processed: %w", err)
	}
	return n > 0, nil
}

func (s *Store) processedIDs(ctx context.Context, kind ledger.SourceKind) (map[string]bool, error) {
	rows, err := s.reader.QueryContext(ctx, `SELECT document_id FROM processed_sources WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list processed: %w", err)
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan processed: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// movementRow is one journal entry with the date and description of its
// transaction.
type movementRow struct {
	TransactionID string
	Date          time.Time
	Description   string
	AccountCode   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

func (s *Store) movements(ctx context.Context, prefix string, from, to time.Time) ([]movementRow, error) {
	query := `SELECT t.id, t.date, t.description, e.account_code, e.debit, e.credit
		FROM entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE t.finalized = 1 AND t.date >= ? AND t.date < ?`
	args := []any{formatDate(from), formatDate(to)}
	if prefix != "" {
		query += ` AND e.account_code LIKE ? || '%'`
		args = append(args, prefix)
	}
	query += ` ORDER BY t.date, t.posted_at, e.id`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []movementRow
	for rows.Next() {
		var m movementRow
		var date string
		if err := rows.Scan(&m.TransactionID, &date, &m.Description, &m.AccountCode, &m.Debit, &m.Credit); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Date = parseDate(date)
		out = append(out, m)
	}
	return out, rows.Err()
}
