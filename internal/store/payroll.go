package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simonvc/pgcledger/internal/payroll"
	"github.com/simonvc/pgcledger/internal/tax"
)

const employeeColumns = `id, name, nif, position, base_salary, food_subsidy, transport_subsidy, family_subsidy, other_subsidy, active, created_at`

func (s *Store) CreateEmployee(ctx context.Context, e *payroll.Employee) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	e.CreatedAt = time.Now().UTC()
	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO employees (`+employeeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.NIF, e.Position, e.BaseSalary.String(), e.FoodSubsidy.String(), e.TransportSubsidy.String(),
		e.FamilySubsidy.String(), e.OtherSubsidy.String(), boolToInt(e.Active), formatTimestamp(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e *payroll.Employee) error {
	if err := e.Validate(); err != nil {
		return err
	}
	res, err := s.writer.ExecContext(ctx,
		`UPDATE employees SET name = ?, nif = ?, position = ?, base_salary = ?, food_subsidy = ?, transport_subsidy = ?,
			family_subsidy = ?, other_subsidy = ?, active = ? WHERE id = ?`,
		e.Name, e.NIF, e.Position, e.BaseSalary.String(), e.FoodSubsidy.String(), e.TransportSubsidy.String(),
		e.FamilySubsidy.String(), e.OtherSubsidy.String(), boolToInt(e.Active), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrEmployeeNotFound
	}
	return nil
}

func scanEmployee(row rowScanner) (*payroll.Employee, error) {
	var e payroll.Employee
	var active int
	var createdAt string
	err := row.Scan(&e.ID, &e.Name, &e.NIF, &e.Position, &e.BaseSalary, &e.FoodSubsidy, &e.TransportSubsidy,
		&e.FamilySubsidy, &e.OtherSubsidy, &active, &createdAt)
	if err != nil {
		return nil, err
	}
	e.Active = active == 1
	e.CreatedAt = parseTimestamp(createdAt)
	return &e, nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*payroll.Employee, error) {
	e, err := scanEmployee(s.reader.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payroll.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context, activeOnly bool) ([]payroll.Employee, error) {
	return listEmployees(ctx, s.reader, activeOnly)
}

func listEmployees(ctx context.Context, q querier, activeOnly bool) ([]payroll.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	out := []payroll.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// CreateHrTransaction records a bonus, allowance, absence or advance for
// an existing employee.
func (s *Store) CreateHrTransaction(ctx context.Context, t *payroll.HrTransaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, err := s.GetEmployee(ctx, t.EmployeeID); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.Must(uuid.NewV7()).String()
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	t.Processed = false
	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO hr_transactions (id, employee_id, type, amount, date, description) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.EmployeeID, string(t.Type), t.Amount.String(), formatDate(t.Date), t.Description,
	)
	if err != nil {
		return fmt.Errorf("insert hr transaction: %w", err)
	}
	return nil
}

// DeleteHrTransaction removes a transaction that no certified run has
// consumed yet.
func (s *Store) DeleteHrTransaction(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var processed int
		err := tx.QueryRowContext(ctx, `SELECT processed FROM hr_transactions WHERE id = ?`, id).Scan(&processed)
		if errors.Is(err, sql.ErrNoRows) {
			return payroll.ErrTransactionNotFound
		}
		if err != nil {
			return fmt.Errorf("get hr transaction: %w", err)
		}
		if processed == 1 {
			return payroll.ErrAlreadyProcessed
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM hr_transactions WHERE id = ?`, id)
		return err
	})
}

// HrFilter selects HR transactions. A zero Year or Month matches all.
type HrFilter struct {
	EmployeeID  string
	Year, Month int
	PendingOnly bool
}

func (s *Store) ListHrTransactions(ctx context.Context, filter HrFilter) ([]payroll.HrTransaction, error) {
	return listHrTransactions(ctx, s.reader, filter)
}

func listHrTransactions(ctx context.Context, q querier, filter HrFilter) ([]payroll.HrTransaction, error) {
	query := `SELECT id, employee_id, type, amount, date, description, processed FROM hr_transactions WHERE 1=1`
	args := []any{}
	if filter.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, filter.EmployeeID)
	}
	if filter.Year > 0 && filter.Month > 0 {
		from, to := monthRange(filter.Year, filter.Month)
		query += ` AND date >= ? AND date < ?`
		args = append(args, formatDate(from), formatDate(to))
	}
	if filter.PendingOnly {
		query += ` AND processed = 0`
	}
	query += ` ORDER BY date, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list hr transactions: %w", err)
	}
	defer rows.Close()

	out := []payroll.HrTransaction{}
	for rows.Next() {
		var t payroll.HrTransaction
		var date string
		var processed int
		if err := rows.Scan(&t.ID, &t.EmployeeID, &t.Type, &t.Amount, &date, &t.Description, &processed); err != nil {
			return nil, fmt.Errorf("scan hr transaction: %w", err)
		}
		t.Date = parseDate(date)
		t.Processed = processed == 1
		out = append(out, t)
	}
	return out, rows.Err()
}

// PreviewPayroll computes the run of a month without storing anything.
func (s *Store) PreviewPayroll(ctx context.Context, year, month int, calc *tax.Calculator) (*payroll.Run, error) {
	if err := payroll.ValidPeriod(year, month); err != nil {
		return nil, err
	}
	return previewPayroll(ctx, s.reader, year, month, calc)
}

func previewPayroll(ctx context.Context, q querier, year, month int, calc *tax.Calculator) (*payroll.Run, error) {
	employees, err := listEmployees(ctx, q, true)
	if err != nil {
		return nil, err
	}
	txns, err := listHrTransactions(ctx, q, HrFilter{Year: year, Month: month, PendingOnly: true})
	if err != nil {
		return nil, err
	}
	return payroll.Preview(employees, txns, year, month, calc)
}

// CertifyPayroll freezes the payroll of a month. The run, its slips and the
// processed flag of every consumed HR transaction are written in one
// transaction. A month can be certified once.
func (s *Store) CertifyPayroll(ctx context.Context, year, month int, calc *tax.Calculator) (*payroll.Run, error) {
	if err := payroll.ValidPeriod(year, month); err != nil {
		return nil, err
	}
	var run *payroll.Run
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM payroll_runs WHERE year = ? AND month = ?`, year, month).Scan(&n); err != nil {
			return fmt.Errorf("check payroll run: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %04d-%02d", payroll.ErrAlreadyCertified, year, month)
		}

		r, err := previewPayroll(ctx, tx, year, month, calc)
		if err != nil {
			return err
		}
		if len(r.Slips) == 0 {
			return payroll.ErrNothingToCertify
		}
		r.ID = uuid.Must(uuid.NewV7()).String()
		r.Status = payroll.RunCertified
		r.CertifiedAt = time.Now().UTC()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payroll_runs (id, year, month, status, certified_at) VALUES (?, ?, ?, ?, ?)`,
			r.ID, year, month, string(r.Status), formatTimestamp(r.CertifiedAt),
		); err != nil {
			return fmt.Errorf("insert payroll run: %w", err)
		}
		for _, sl := range r.Slips {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO payroll_slips (run_id, employee_id, employee_name, base_salary, bonuses, allowances, absences,
					advances, gross, subsidies, inss, irt, employer_inss, net) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, sl.EmployeeID, sl.EmployeeName, sl.BaseSalary.String(), sl.Bonuses.String(), sl.Allowances.String(),
				sl.Absences.String(), sl.Advances.String(), sl.Gross.String(), sl.Subsidies.String(), sl.INSS.String(),
				sl.IRT.String(), sl.EmployerINSS.String(), sl.Net.String(),
			); err != nil {
				return fmt.Errorf("insert slip %s: %w", sl.EmployeeID, err)
			}
		}
		for _, id := range r.TransactionIDs() {
			if _, err := tx.ExecContext(ctx,
				`UPDATE hr_transactions SET processed = 1, run_id = ? WHERE id = ? AND processed = 0`, r.ID, id,
			); err != nil {
				return fmt.Errorf("mark hr transaction %s: %w", id, err)
			}
		}
		run = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

const runColumns = `id, year, month, status, certified_at`

func scanRun(row rowScanner) (*payroll.Run, error) {
	var r payroll.Run
	var certifiedAt string
	if err := row.Scan(&r.ID, &r.Year, &r.Month, &r.Status, &certifiedAt); err != nil {
		return nil, err
	}
	r.CertifiedAt = parseTimestamp(certifiedAt)
	return &r, nil
}

func (s *Store) GetPayrollRun(ctx context.Context, id string) (*payroll.Run, error) {
	r, err := scanRun(s.reader.QueryRowContext(ctx, `SELECT `+runColumns+` FROM payroll_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payroll.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payroll run: %w", err)
	}
	if err := s.loadSlips(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetPayrollRunByPeriod returns the certified run of a month.
func (s *Store) GetPayrollRunByPeriod(ctx context.Context, year, month int) (*payroll.Run, error) {
	r, err := scanRun(s.reader.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM payroll_runs WHERE year = ? AND month = ?`, year, month))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payroll.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payroll run: %w", err)
	}
	if err := s.loadSlips(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListPayrollRuns(ctx context.Context) ([]payroll.Run, error) {
	rows, err := s.reader.QueryContext(ctx, `SELECT `+runColumns+` FROM payroll_runs ORDER BY year DESC, month DESC`)
	if err != nil {
		return nil, fmt.Errorf("list payroll runs: %w", err)
	}
	defer rows.Close()

	out := []payroll.Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payroll run: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadSlips(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadSlips(ctx context.Context, r *payroll.Run) error {
	consumed := make(map[string][]string)
	trows, err := s.reader.QueryContext(ctx, `SELECT id, employee_id FROM hr_transactions WHERE run_id = ? ORDER BY date, id`, r.ID)
	if err != nil {
		return fmt.Errorf("list consumed transactions: %w", err)
	}
	for trows.Next() {
		var id, emp string
		if err := trows.Scan(&id, &emp); err != nil {
			trows.Close()
			return fmt.Errorf("scan consumed transaction: %w", err)
		}
		consumed[emp] = append(consumed[emp], id)
	}
	trows.Close()

	rows, err := s.reader.QueryContext(ctx,
		`SELECT employee_id, employee_name, base_salary, bonuses, allowances, absences, advances, gross, subsidies,
			inss, irt, employer_inss, net FROM payroll_slips WHERE run_id = ? ORDER BY employee_name`, r.ID)
	if err != nil {
		return fmt.Errorf("list slips: %w", err)
	}
	defer rows.Close()

	r.Slips = []payroll.SalarySlip{}
	for rows.Next() {
		sl := payroll.SalarySlip{Year: r.Year, Month: r.Month}
		if err := rows.Scan(&sl.EmployeeID, &sl.EmployeeName, &sl.BaseSalary, &sl.Bonuses, &sl.Allowances, &sl.Absences,
			&sl.Advances, &sl.Gross, &sl.Subsidies, &sl.INSS, &sl.IRT, &sl.EmployerINSS, &sl.Net); err != nil {
			return fmt.Errorf("scan slip: %w", err)
		}
		sl.TransactionIDs = consumed[sl.EmployeeID]
		if sl.TransactionIDs == nil {
			sl.TransactionIDs = []string{}
		}
		r.Slips = append(r.Slips, sl)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	r.Totals = payroll.SumSlips(r.Slips)
	return nil
}
