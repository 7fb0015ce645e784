// Package payroll turns employees and their monthly HR transactions into
// salary slips.
package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Employee carries the fixed monthly terms of a worker: base salary and the
// four subsidies paid on top of it.
type Employee struct {
	ID               string          `json:"id"`
	Name             string          `json:"name" validate:"required"`
	NIF              string          `json:"nif,omitempty"`
	Position         string          `json:"position,omitempty"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	FoodSubsidy      decimal.Decimal `json:"food_subsidy"`
	TransportSubsidy decimal.Decimal `json:"transport_subsidy"`
	FamilySubsidy    decimal.Decimal `json:"family_subsidy"`
	OtherSubsidy     decimal.Decimal `json:"other_subsidy"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at,omitempty"`
}

// Subsidies is the sum of the four fixed subsidies.
func (e *Employee) Subsidies() decimal.Decimal {
	return e.FoodSubsidy.Add(e.TransportSubsidy).Add(e.FamilySubsidy).Add(e.OtherSubsidy)
}

func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	for _, v := range []decimal.Decimal{e.BaseSalary, e.FoodSubsidy, e.TransportSubsidy, e.FamilySubsidy, e.OtherSubsidy} {
		if v.IsNegative() {
			return fmt.Errorf("%s: %w", e.Name, ErrNegativeAmount)
		}
	}
	return nil
}

type TransactionType string

const (
	TxBonus     TransactionType = "BONUS"
	TxAllowance TransactionType = "ALLOWANCE"
	TxAbsence   TransactionType = "ABSENCE"
	TxAdvance   TransactionType = "ADVANCE"
)

// HrTransaction is a one-off monthly event for an employee. Processed is set
// when a certified payroll run consumes it.
type HrTransaction struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id" validate:"required"`
	Type        TransactionType `json:"type" validate:"required,oneof=BONUS ALLOWANCE ABSENCE ADVANCE"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date" validate:"required"`
	Description string          `json:"description,omitempty"`
	Processed   bool            `json:"processed"`
}

func (t *HrTransaction) Validate() error {
	switch t.Type {
	case TxBonus, TxAllowance, TxAbsence, TxAdvance:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrNegativeAmount)
	}
	return nil
}

// InPeriod reports whether the transaction is dated in the given month.
func (t *HrTransaction) InPeriod(year, month int) bool {
	return t.Date.Year() == year && int(t.Date.Month()) == month
}
