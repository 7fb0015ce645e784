package documents

import "errors"

var (
	ErrNoItems           = errors.New("document has no items")
	ErrInvalidQuantity   = errors.New("item quantity must be positive")
	ErrNegativeAmount    = errors.New("amounts cannot be negative")
	ErrInvalidType       = errors.New("invalid document type")
	ErrInvalidStatus     = errors.New("invalid document status")
	ErrMissingParty      = errors.New("client or supplier is required")
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrDuplicateDocument = errors.New("document number already exists")
	ErrInvalidTaxRate    = errors.New("invalid tax rate")
	ErrStatusTransition  = errors.New("status change not allowed")
	ErrDocumentPosted    = errors.New("document already posted to the journal")
)
