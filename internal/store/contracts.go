package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simonvc/pgcledger/internal/contracts"
)

const contractColumns = `id, empresa_id, funcionario_id, tipo, data_inicio, data_fim, status, clausulas, salario, updated_at`

// UpsertContract saves a contract keyed by company, employee, type and start
// date. Saving an existing key replaces its other fields and keeps its id.
func (s *Store) UpsertContract(ctx context.Context, c *contracts.Contract) error {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.Must(uuid.NewV7()).String()
	}
	c.UpdatedAt = time.Now().UTC()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contracts (`+contractColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (empresa_id, funcionario_id, tipo, data_inicio) DO UPDATE SET
				data_fim = excluded.data_fim,
				status = excluded.status,
				clausulas = excluded.clausulas,
				salario = excluded.salario,
				updated_at = excluded.updated_at`,
			c.ID, c.CompanyID, c.EmployeeID, string(c.Type), c.StartDate, c.EndDate, string(c.Status),
			c.Clauses, c.Salary.String(), formatTimestamp(c.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert contract: %w", err)
		}
		return tx.QueryRowContext(ctx,
			`SELECT id FROM contracts WHERE empresa_id = ? AND funcionario_id = ? AND tipo = ? AND data_inicio = ?`,
			c.CompanyID, c.EmployeeID, string(c.Type), c.StartDate,
		).Scan(&c.ID)
	})
}

func scanContract(row rowScanner) (*contracts.Contract, error) {
	var c contracts.Contract
	var updatedAt string
	err := row.Scan(&c.ID, &c.CompanyID, &c.EmployeeID, &c.Type, &c.StartDate, &c.EndDate, &c.Status,
		&c.Clauses, &c.Salary, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = parseTimestamp(updatedAt)
	return &c, nil
}

func (s *Store) GetContract(ctx context.Context, id string) (*contracts.Contract, error) {
	c, err := scanContract(s.reader.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return c, nil
}

// ListContracts filters by company and, when given, employee.
func (s *Store) ListContracts(ctx context.Context, companyID, employeeID string) ([]contracts.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	args := []any{}
	if companyID != "" {
		query += ` AND empresa_id = ?`
		args = append(args, companyID)
	}
	if employeeID != "" {
		query += ` AND funcionario_id = ?`
		args = append(args, employeeID)
	}
	query += ` ORDER BY data_inicio DESC`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	out := []contracts.Contract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
