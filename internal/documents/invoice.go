package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceType string

const (
	TypeFatura       InvoiceType = "FT"
	TypeFaturaRecibo InvoiceType = "FR"
	TypeSimplificada InvoiceType = "FS"
	TypeNotaCredito  InvoiceType = "NC"
	TypeNotaDebito   InvoiceType = "ND"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceCertified InvoiceStatus = "CERTIFIED"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// CanBecome reports whether an invoice in status s may move to next. A
// certified invoice can only be cancelled and a cancelled one is final.
func (s InvoiceStatus) CanBecome(next InvoiceStatus) bool {
	switch s {
	case InvoiceDraft:
		return next == InvoiceCertified || next == InvoiceCancelled
	case InvoiceCertified:
		return next == InvoiceCancelled
	default:
		return false
	}
}

type Invoice struct {
	ID         string          `json:"id"`
	Number     string          `json:"number" validate:"required"`
	Type       InvoiceType     `json:"type" validate:"required,oneof=FT FR FS NC ND"`
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name" validate:"required"`
	Date       time.Time       `json:"date"`
	Status     InvoiceStatus   `json:"status" validate:"omitempty,oneof=DRAFT CERTIFIED CANCELLED"`
	Items      []Item          `json:"items" validate:"required,min=1,dive"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

// ApplyDefaultRate gives rate to every item that has no rate and is not
// exempt.
func (inv *Invoice) ApplyDefaultRate(rate decimal.Decimal) {
	for i := range inv.Items {
		it := &inv.Items[i]
		if !it.Exempt && it.TaxRate.IsZero() {
			it.TaxRate = rate
		}
	}
}

// IsCreditNote reports whether the invoice reverses revenue.
func (inv *Invoice) IsCreditNote() bool {
	return inv.Type == TypeNotaCredito
}

// Recalculate derives subtotal, tax and total from the items.
func (inv *Invoice) Recalculate() {
	inv.Subtotal, inv.Tax = decimal.Zero, decimal.Zero
	for _, it := range inv.Items {
		inv.Subtotal = inv.Subtotal.Add(it.Base())
		inv.Tax = inv.Tax.Add(it.Tax())
	}
	inv.Total = inv.Subtotal.Add(inv.Tax)
}

// Validate checks an invoice before it is stored.
func (inv *Invoice) Validate() error {
	switch inv.Type {
	case TypeFatura, TypeFaturaRecibo, TypeSimplificada, TypeNotaCredito, TypeNotaDebito:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, inv.Type)
	}
	switch inv.Status {
	case InvoiceDraft, InvoiceCertified, InvoiceCancelled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, inv.Status)
	}
	if strings.TrimSpace(inv.ClientName) == "" && strings.TrimSpace(inv.ClientID) == "" {
		return ErrMissingParty
	}
	if len(inv.Items) == 0 {
		return ErrNoItems
	}
	for _, it := range inv.Items {
		if err := it.validate(); err != nil {
			return err
		}
	}
	return nil
}
