package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/vat"
)

// VATPosting names the accounts of the optional settlement journal.
type VATPosting struct {
	OutputAccount     string
	InputAccount      string
	SettlementAccount string
}

// ComputeVAT builds the settlement of a month from the stored documents.
func (s *Store) ComputeVAT(ctx context.Context, year, month int, salesAdjust, purchaseAdjust decimal.Decimal) (*vat.Settlement, error) {
	if err := vat.ValidPeriod(year, month); err != nil {
		return nil, err
	}
	from, to := monthRange(year, month)
	invoices, err := s.ListInvoices(ctx, DocumentFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	purchases, err := s.ListPurchases(ctx, DocumentFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	return vat.Compute(year, month, invoices, purchases, salesAdjust, purchaseAdjust)
}

// RegisterVAT freezes the settlement of a month. When post is set the
// closing journal transaction is written in the same SQL transaction.
func (s *Store) RegisterVAT(ctx context.Context, year, month int, salesAdjust, purchaseAdjust decimal.Decimal, post *VATPosting) (*vat.Settlement, error) {
	st, err := s.ComputeVAT(ctx, year, month, salesAdjust, purchaseAdjust)
	if err != nil {
		return nil, err
	}
	st.ID = uuid.Must(uuid.NewV7()).String()
	st.Status = vat.StatusProcessed
	st.CreatedAt = time.Now().UTC()

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM vat_settlements WHERE year = ? AND month = ?`, year, month).Scan(&n); err != nil {
			return fmt.Errorf("check vat settlement: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %04d-%02d", vat.ErrAlreadyRegistered, year, month)
		}

		if post != nil {
			journal, err := vat.Journal(st, post.OutputAccount, post.InputAccount, post.SettlementAccount)
			switch {
			case errors.Is(err, vat.ErrNothingToSettle):
			case err != nil:
				return err
			default:
				if err := insertTransaction(ctx, tx, &journal); err != nil {
					return fmt.Errorf("vat journal: %w", err)
				}
				st.TransactionID = journal.ID
			}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO vat_settlements (id, year, month, output_vat, input_vat, sales_adjust, purchase_adjust, total_credit,
				total_debit, balance, label, status, invoice_count, purchase_count, transaction_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, st.Year, st.Month, st.OutputVAT.String(), st.InputVAT.String(), st.SalesAdjust.String(),
			st.PurchaseAdjust.String(), st.TotalCredit.String(), st.TotalDebit.String(), st.Balance.String(),
			st.Label, st.Status, st.InvoiceCount, st.PurchaseCount, st.TransactionID, formatTimestamp(st.CreatedAt),
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %04d-%02d", vat.ErrAlreadyRegistered, year, month)
		}
		if err != nil {
			return fmt.Errorf("insert vat settlement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

const vatColumns = `id, year, month, output_vat, input_vat, sales_adjust, purchase_adjust, total_credit, total_debit,
	balance, label, status, invoice_count, purchase_count, transaction_id, created_at`

func scanSettlement(row rowScanner) (*vat.Settlement, error) {
	var st vat.Settlement
	var createdAt string
	err := row.Scan(&st.ID, &st.Year, &st.Month, &st.OutputVAT, &st.InputVAT, &st.SalesAdjust, &st.PurchaseAdjust,
		&st.TotalCredit, &st.TotalDebit, &st.Balance, &st.Label, &st.Status, &st.InvoiceCount, &st.PurchaseCount,
		&st.TransactionID, &createdAt)
	if err != nil {
		return nil, err
	}
	st.CreatedAt = parseTimestamp(createdAt)
	return &st, nil
}

func (s *Store) GetVATSettlement(ctx context.Context, year, month int) (*vat.Settlement, error) {
	st, err := scanSettlement(s.reader.QueryRowContext(ctx,
		`SELECT `+vatColumns+` FROM vat_settlements WHERE year = ? AND month = ?`, year, month))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vat.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vat settlement: %w", err)
	}
	return st, nil
}

// ListVATSettlements returns the registered settlements, newest first. A
// zero year lists every year.
func (s *Store) ListVATSettlements(ctx context.Context, year int) ([]vat.Settlement, error) {
	query := `SELECT ` + vatColumns + ` FROM vat_settlements`
	args := []any{}
	if year > 0 {
		query += ` WHERE year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY year DESC, month DESC`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vat settlements: %w", err)
	}
	defer rows.Close()

	out := []vat.Settlement{}
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vat settlement: %w", err)
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}
