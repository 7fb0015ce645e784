package ledger

import "errors"

var (
	ErrInvalidAccountCode    = errors.New("invalid account code")
	ErrInvalidAccountType    = errors.New("invalid account type")
	ErrInvalidNature         = errors.New("invalid account nature")
	ErrEmptyDescription      = errors.New("description is required")
	ErrAccountNotFound       = errors.New("account not found")
	ErrDuplicateAccount      = errors.New("account code already exists")
	ErrHasChildren           = errors.New("account has sub-accounts")
	ErrAccountInUse          = errors.New("account has movements")
	ErrUnbalancedTransaction = errors.New("transaction entries do not balance")
	ErrTooFewEntries         = errors.New("transaction must have at least 2 entries")
	ErrInvalidEntry          = errors.New("entry must carry exactly one positive side")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrUnbalancedOpening     = errors.New("opening balance debits and credits differ")
	ErrDuplicateOpeningRow   = errors.New("account appears twice in opening balance")
	ErrNegativeAmount        = errors.New("amounts cannot be negative")
	ErrInvalidPeriod         = errors.New("invalid period")
)
