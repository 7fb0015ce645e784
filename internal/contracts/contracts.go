// Package contracts holds employment contract records. A contract is
// identified by company, employee, type and start date; saving the same
// key again replaces the stored record.
package contracts

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("contract not found")
	ErrInvalidDates = errors.New("contract end date is before its start date")
	ErrInvalidType  = errors.New("invalid contract type")
	ErrMissingField = errors.New("contract is missing a required field")
)

const DateLayout = "2006-01-02"

type Type string

const (
	TypeFixedTerm  Type = "DETERMINADO"
	TypeOpenEnded  Type = "INDETERMINADO"
	TypeService    Type = "PRESTACAO_SERVICOS"
	TypeInternship Type = "ESTAGIO"
)

type Status string

const (
	StatusDraft      Status = "RASCUNHO"
	StatusActive     Status = "ATIVO"
	StatusEnded      Status = "TERMINADO"
	StatusTerminated Status = "RESCINDIDO"
)

// Contract keeps the column names of the contracts table in its JSON form.
type Contract struct {
	ID         string          `json:"id,omitempty"`
	EmployeeID string          `json:"funcionario_id" validate:"required"`
	Type       Type            `json:"tipo" validate:"required"`
	StartDate  string          `json:"data_inicio" validate:"required,datetime=2006-01-02"`
	EndDate    string          `json:"data_fim,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status     Status          `json:"status"`
	Clauses    string          `json:"clausulas"`
	Salary     decimal.Decimal `json:"salario"`
	CompanyID  string          `json:"empresa_id" validate:"required"`
	UpdatedAt  time.Time       `json:"updated_at,omitempty"`
}

// Normalize fills the status of a new contract.
func (c *Contract) Normalize() {
	if c.Status == "" {
		c.Status = StatusDraft
	}
}

func (c *Contract) Validate() error {
	if c.EmployeeID == "" || c.CompanyID == "" || c.StartDate == "" {
		return ErrMissingField
	}
	switch c.Type {
	case TypeFixedTerm, TypeOpenEnded, TypeService, TypeInternship:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, c.Type)
	}
	start, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return fmt.Errorf("data_inicio: %w", err)
	}
	if c.EndDate != "" {
		end, err := time.Parse(DateLayout, c.EndDate)
		if err != nil {
			return fmt.Errorf("data_fim: %w", err)
		}
		if end.Before(start) {
			return ErrInvalidDates
		}
	}
	if c.Salary.IsNegative() {
		return fmt.Errorf("%w: salario", ErrMissingField)
	}
	return nil
}
