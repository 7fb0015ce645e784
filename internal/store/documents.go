package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/ledger"
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const itemColumns = `id, description, kind, quantity, unit_price, tax_rate, rubrica, exempt`

func insertItems(ctx context.Context, tx *sql.Tx, table, fk, docID string, items []documents.Item) error {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		it := items[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (id, `+fk+`, position, description, kind, quantity, unit_price, tax_rate, rubrica, exempt) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, docID, i, it.Description, string(it.Kind), it.Quantity.String(), it.UnitPrice.String(), it.TaxRate.String(), it.Rubrica, boolToInt(it.Exempt),
		)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}
	return nil
}

func listItems(ctx context.Context, q querier, table, fk, docID string) ([]documents.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM `+table+` WHERE `+fk+` = ? ORDER BY position`, docID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []documents.Item{}
	for rows.Next() {
		var it documents.Item
		var exempt int
		if err := rows.Scan(&it.ID, &it.Description, &it.Kind, &it.Quantity, &it.UnitPrice, &it.TaxRate, &it.Rubrica, &exempt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Exempt = exempt == 1
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateInvoice stores an invoice with its items. Totals are recomputed
// from the items.
func (s *Store) CreateInvoice(ctx context.Context, inv *documents.Invoice) error {
	if inv.Status == "" {
		inv.Status = documents.InvoiceDraft
	}
	if inv.Date.IsZero() {
		inv.Date = time.Now().UTC()
	}
	if err := inv.Validate(); err != nil {
		return err
	}
	inv.Recalculate()
	if inv.ID == "" {
		inv.ID = uuid.Must(uuid.NewV7()).String()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO invoices (id, number, type, client_id, client_name, date, status, subtotal, tax, total) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, inv.Number, string(inv.Type), inv.ClientID, inv.ClientName, formatDate(inv.Date), string(inv.Status),
			inv.Subtotal.String(), inv.Tax.String(), inv.Total.String(),
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invoice %s", documents.ErrDuplicateDocument, inv.Number)
		}
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		return insertItems(ctx, tx, "invoice_items", "invoice_id", inv.ID, inv.Items)
	})
}

const invoiceColumns = `id, number, type, client_id, client_name, date, status, subtotal, tax, total`

func scanInvoice(row rowScanner) (*documents.Invoice, error) {
	var inv documents.Invoice
	var date string
	err := row.Scan(&inv.ID, &inv.Number, &inv.Type, &inv.ClientID, &inv.ClientName, &date, &inv.Status,
		&inv.Subtotal, &inv.Tax, &inv.Total)
	if err != nil {
		return nil, err
	}
	inv.Date = parseDate(date)
	return &inv, nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*documents.Invoice, error) {
	inv, err := scanInvoice(s.reader.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, documents.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.Items, err = listItems(ctx, s.reader, "invoice_items", "invoice_id", id)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func documentWhere(filter DocumentFilter) (string, []any) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		where += ` AND date >= ?`
		args = append(args, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		where += ` AND date < ?`
		args = append(args, formatDate(filter.To))
	}
	return where, args
}

func (s *Store) ListInvoices(ctx context.Context, filter DocumentFilter) ([]documents.Invoice, error) {
	where, args := documentWhere(filter)
	query := addPaging(`SELECT `+invoiceColumns+` FROM invoices`+where+` ORDER BY date, number`, filter.Limit, filter.Offset)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	out := []documents.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = listItems(ctx, s.reader, "invoice_items", "invoice_id", out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SetInvoiceStatus moves an invoice between draft, certified and
// cancelled. Certified invoices cannot go back to draft, and an invoice
// already posted to the journal keeps its status.
func (s *Store) SetInvoiceStatus(ctx context.Context, id string, status documents.InvoiceStatus) error {
	switch status {
	case documents.InvoiceDraft, documents.InvoiceCertified, documents.InvoiceCancelled:
	default:
		return fmt.Errorf("%w: %q", documents.ErrInvalidStatus, status)
	}
	return s.setDocumentStatus(ctx, "invoices", ledger.SourceSales, id, documents.ErrInvoiceNotFound,
		func(current string) bool { return documents.InvoiceStatus(current).CanBecome(status) },
		string(status))
}

// setDocumentStatus updates the status column of table after checking the
// transition and that the document has not been posted.
func (s *Store) setDocumentStatus(ctx context.Context, table string, kind ledger.SourceKind, id string, notFound error, allowed func(current string) bool, status string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM `+table+` WHERE id = ?`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		if err != nil {
			return fmt.Errorf("get %s status: %w", table, err)
		}
		if current == status {
			return nil
		}
		posted, err := isProcessed(ctx, tx, classify.Key{Kind: kind, DocumentID: id})
		if err != nil {
			return err
		}
		if posted {
			return fmt.Errorf("%w: %s", documents.ErrDocumentPosted, id)
		}
		if !allowed(current) {
			return fmt.Errorf("%w: %s to %s", documents.ErrStatusTransition, current, status)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET status = ? WHERE id = ?`, status, id); err != nil {
			return fmt.Errorf("update %s status: %w", table, err)
		}
		return nil
	})
}

func (s *Store) CreatePurchase(ctx context.Context, p *documents.Purchase) error {
	if p.Status == "" {
		p.Status = documents.PurchasePending
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p.Recalculate()
	if p.ID == "" {
		p.ID = uuid.Must(uuid.NewV7()).String()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO purchases (id, number, supplier_id, supplier_name, date, status, subtotal, tax, total) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Number, p.SupplierID, p.SupplierName, formatDate(p.Date), string(p.Status),
			p.Subtotal.String(), p.Tax.String(), p.Total.String(),
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: purchase %s from %s", documents.ErrDuplicateDocument, p.Number, p.SupplierName)
		}
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		return insertItems(ctx, tx, "purchase_items", "purchase_id", p.ID, p.Items)
	})
}

const purchaseColumns = `id, number, supplier_id, supplier_name, date, status, subtotal, tax, total`

func scanPurchase(row rowScanner) (*documents.Purchase, error) {
	var p documents.Purchase
	var date string
	err := row.Scan(&p.ID, &p.Number, &p.SupplierID, &p.SupplierName, &date, &p.Status, &p.Subtotal, &p.Tax, &p.Total)
	if err != nil {
		return nil, err
	}
	p.Date = parseDate(date)
	return &p, nil
}

func (s *Store) GetPurchase(ctx context.Context, id string) (*documents.Purchase, error) {
	p, err := scanPurchase(s.reader.QueryRowContext(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, documents.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	p.Items, err = listItems(ctx, s.reader, "purchase_items", "purchase_id", id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListPurchases(ctx context.Context, filter DocumentFilter) ([]documents.Purchase, error) {
	where, args := documentWhere(filter)
	query := addPaging(`SELECT `+purchaseColumns+` FROM purchases`+where+` ORDER BY date, number`, filter.Limit, filter.Offset)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	out := []documents.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = listItems(ctx, s.reader, "purchase_items", "purchase_id", out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SetPurchaseStatus moves a purchase between pending, paid and cancelled
// under the same rules as invoices.
func (s *Store) SetPurchaseStatus(ctx context.Context, id string, status documents.PurchaseStatus) error {
	switch status {
	case documents.PurchasePending, documents.PurchasePaid, documents.PurchaseCancelled:
	default:
		return fmt.Errorf("%w: %q", documents.ErrInvalidStatus, status)
	}
	return s.setDocumentStatus(ctx, "purchases", ledger.SourcePurchase, id, documents.ErrPurchaseNotFound,
		func(current string) bool { return documents.PurchaseStatus(current).CanBecome(status) },
		string(status))
}
