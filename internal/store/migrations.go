package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simonvc/pgcledger/internal/ledger"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pgc_accounts (
			code        TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			type        TEXT NOT NULL CHECK (type IN ('CLASSE','GRUPO','SUBGRUPO','CONTA','SUBCONTA')),
			nature      TEXT NOT NULL CHECK (nature IN ('DEBITO','CREDITO','AMBOS')),
			parent_code TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pgc_accounts_parent ON pgc_accounts(parent_code)`,

		`CREATE TABLE IF NOT EXISTS opening_balances (
			year         INTEGER NOT NULL,
			account_code TEXT NOT NULL REFERENCES pgc_accounts(code),
			debit        TEXT NOT NULL,
			credit       TEXT NOT NULL,
			balance_type TEXT NOT NULL CHECK (balance_type IN ('DEBIT','CREDIT')),
			PRIMARY KEY (year, account_code)
		)`,

		`CREATE TABLE IF NOT EXISTS invoices (
			id          TEXT PRIMARY KEY,
			number      TEXT NOT NULL UNIQUE,
			type        TEXT NOT NULL CHECK (type IN ('FT','FR','FS','NC','ND')),
			client_id   TEXT NOT NULL DEFAULT '',
			client_name TEXT NOT NULL DEFAULT '',
			date        TEXT NOT NULL,
			status      TEXT NOT NULL CHECK (status IN ('DRAFT','CERTIFIED','CANCELLED')),
			subtotal    TEXT NOT NULL,
			tax         TEXT NOT NULL,
			total       TEXT NOT NULL,
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices(date)`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
			id          TEXT PRIMARY KEY,
			invoice_id  TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			description TEXT NOT NULL,
			kind        TEXT NOT NULL DEFAULT '',
			quantity    TEXT NOT NULL,
			unit_price  TEXT NOT NULL,
			tax_rate    TEXT NOT NULL,
			rubrica     TEXT NOT NULL DEFAULT '',
			exempt      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id)`,

		`CREATE TABLE IF NOT EXISTS purchases (
			id            TEXT PRIMARY KEY,
			number        TEXT NOT NULL,
			supplier_id   TEXT NOT NULL DEFAULT '',
			supplier_name TEXT NOT NULL DEFAULT '',
			date          TEXT NOT NULL,
			status        TEXT NOT NULL CHECK (status IN ('PENDING','PAID','CANCELLED')),
			subtotal      TEXT NOT NULL,
			tax           TEXT NOT NULL,
			total         TEXT NOT NULL,
			created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (supplier_name, number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_date ON purchases(date)`,
		`CREATE TABLE IF NOT EXISTS purchase_items (
			id          TEXT PRIMARY KEY,
			purchase_id TEXT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			description TEXT NOT NULL,
			kind        TEXT NOT NULL DEFAULT '',
			quantity    TEXT NOT NULL,
			unit_price  TEXT NOT NULL,
			tax_rate    TEXT NOT NULL,
			rubrica     TEXT NOT NULL DEFAULT '',
			exempt      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchase_items_purchase ON purchase_items(purchase_id)`,

		`CREATE TABLE IF NOT EXISTS employees (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			nif               TEXT NOT NULL DEFAULT '',
			position          TEXT NOT NULL DEFAULT '',
			base_salary       TEXT NOT NULL,
			food_subsidy      TEXT NOT NULL,
			transport_subsidy TEXT NOT NULL,
			family_subsidy    TEXT NOT NULL,
			other_subsidy     TEXT NOT NULL,
			active            INTEGER NOT NULL DEFAULT 1,
			created_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE TABLE IF NOT EXISTS hr_transactions (
			id          TEXT PRIMARY KEY,
			employee_id TEXT NOT NULL REFERENCES employees(id),
			type        TEXT NOT NULL CHECK (type IN ('BONUS','ALLOWANCE','ABSENCE','ADVANCE')),
			amount      TEXT NOT NULL,
			date        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			processed   INTEGER NOT NULL DEFAULT 0,
			run_id      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hr_transactions_employee ON hr_transactions(employee_id, date)`,

		`CREATE TABLE IF NOT EXISTS payroll_runs (
			id           TEXT PRIMARY KEY,
			year         INTEGER NOT NULL,
			month        INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
			status       TEXT NOT NULL,
			certified_at TEXT NOT NULL,
			UNIQUE (year, month)
		)`,
		`CREATE TABLE IF NOT EXISTS payroll_slips (
			run_id        TEXT NOT NULL REFERENCES payroll_runs(id),
			employee_id   TEXT NOT NULL,
			employee_name TEXT NOT NULL,
			base_salary   TEXT NOT NULL,
			bonuses       TEXT NOT NULL,
			allowances    TEXT NOT NULL,
			absences      TEXT NOT NULL,
			advances      TEXT NOT NULL,
			gross         TEXT NOT NULL,
			subsidies     TEXT NOT NULL,
			inss          TEXT NOT NULL,
			irt           TEXT NOT NULL,
			employer_inss TEXT NOT NULL,
			net           TEXT NOT NULL,
			PRIMARY KEY (run_id, employee_id)
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			date        TEXT NOT NULL,
			description TEXT NOT NULL,
			source_kind TEXT NOT NULL DEFAULT 'MANUAL',
			source_id   TEXT NOT NULL DEFAULT '',
			finalized   INTEGER NOT NULL DEFAULT 0,
			posted_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,

		`CREATE TABLE IF NOT EXISTS entries (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			transaction_id TEXT NOT NULL REFERENCES transactions(id),
			account_code   TEXT NOT NULL REFERENCES pgc_accounts(code),
			debit          TEXT NOT NULL,
			credit         TEXT NOT NULL,
			memo           TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_txn ON entries(transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_account ON entries(account_code)`,

		`CREATE TABLE IF NOT EXISTS processed_sources (
			kind         TEXT NOT NULL,
			document_id  TEXT NOT NULL,
			processed_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			PRIMARY KEY (kind, document_id)
		)`,

		`CREATE TABLE IF NOT EXISTS vat_settlements (
			id              TEXT PRIMARY KEY,
			year            INTEGER NOT NULL,
			month           INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
			output_vat      TEXT NOT NULL,
			input_vat       TEXT NOT NULL,
			sales_adjust    TEXT NOT NULL,
			purchase_adjust TEXT NOT NULL,
			total_credit    TEXT NOT NULL,
			total_debit     TEXT NOT NULL,
			balance         TEXT NOT NULL,
			label           TEXT NOT NULL,
			status          TEXT NOT NULL,
			invoice_count   INTEGER NOT NULL,
			purchase_count  INTEGER NOT NULL,
			transaction_id  TEXT NOT NULL DEFAULT '',
			created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (year, month)
		)`,

		`CREATE TABLE IF NOT EXISTS contracts (
			id             TEXT PRIMARY KEY,
			empresa_id     TEXT NOT NULL,
			funcionario_id TEXT NOT NULL,
			tipo           TEXT NOT NULL,
			data_inicio    TEXT NOT NULL,
			data_fim       TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL,
			clausulas      TEXT NOT NULL DEFAULT '',
			salario        TEXT NOT NULL,
			updated_at     TEXT NOT NULL,
			UNIQUE (empresa_id, funcionario_id, tipo, data_inicio)
		)`,

		// A transaction can only be finalized when its entries balance.
		`CREATE TRIGGER IF NOT EXISTS trg_check_balance
		BEFORE UPDATE OF finalized ON transactions
		WHEN NEW.finalized = 1
		BEGIN
			SELECT CASE
				WHEN (SELECT COUNT(*) FROM entries WHERE transaction_id = NEW.id) < 2
				THEN RAISE(ABORT, 'transaction must have at least 2 entries')
				WHEN (
					SELECT ABS(SUM(CAST(debit AS REAL)) - SUM(CAST(credit AS REAL)))
					FROM entries
					WHERE transaction_id = NEW.id
				) > 0.005
				THEN RAISE(ABORT, 'transaction entries do not balance')
			END;
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_immutable_entries_insert
		BEFORE INSERT ON entries
		WHEN (SELECT finalized FROM transactions WHERE id = NEW.transaction_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot add entries to a finalized transaction');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_immutable_entries_delete
		BEFORE DELETE ON entries
		WHEN (SELECT finalized FROM transactions WHERE id = OLD.transaction_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot remove entries from a finalized transaction');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_immutable_entries_update
		BEFORE UPDATE ON entries
		WHEN (SELECT finalized FROM transactions WHERE id = OLD.transaction_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot modify entries of a finalized transaction');
		END`,

		// Registered settlements and certified slips are historical records.
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_vat_update
		BEFORE UPDATE ON vat_settlements
		BEGIN
			SELECT RAISE(ABORT, 'vat settlements cannot be modified');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_vat_delete
		BEFORE DELETE ON vat_settlements
		BEGIN
			SELECT RAISE(ABORT, 'vat settlements cannot be deleted');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_slips_update
		BEFORE UPDATE ON payroll_slips
		BEGIN
			SELECT RAISE(ABORT, 'certified salary slips cannot be modified');
		END`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			head := stmt
			if len(head) > 60 {
				head = head[:60]
			}
			return fmt.Errorf("exec %q: %w", head, err)
		}
	}

	for _, a := range ledger.DefaultChart() {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO pgc_accounts (code, description, type, nature, parent_code) VALUES (?, ?, ?, ?, ?)`,
			a.Code, a.Description, string(a.Type), string(a.Nature), a.ParentCode,
		)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.Code, err)
		}
	}

	return nil
}
