package payroll

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrTransactionNotFound = errors.New("hr transaction not found")
	ErrInvalidPeriod       = errors.New("invalid payroll period")
	ErrInvalidType         = errors.New("invalid hr transaction type")
	ErrNegativeAmount      = errors.New("amounts cannot be negative")
	ErrEmptyName           = errors.New("employee name is required")
	ErrAlreadyCertified    = errors.New("payroll for this period is already certified")
	ErrRunNotFound         = errors.New("payroll run not found")
	ErrAlreadyProcessed    = errors.New("hr transaction is already processed")
	ErrNothingToCertify    = errors.New("no active employees for the period")
)
