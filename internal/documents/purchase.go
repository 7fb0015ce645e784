package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/money"
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "PENDING"
	PurchasePaid      PurchaseStatus = "PAID"
	PurchaseCancelled PurchaseStatus = "CANCELLED"
)

// CanBecome reports whether a purchase in status s may move to next.
func (s PurchaseStatus) CanBecome(next PurchaseStatus) bool {
	switch s {
	case PurchasePending:
		return next == PurchasePaid || next == PurchaseCancelled
	case PurchasePaid:
		return next == PurchaseCancelled
	default:
		return false
	}
}

// Purchase is a supplier document. Suppliers often send a single VAT
// amount for the whole document, so Tax may be set on the header while
// the items carry no rate.
type Purchase struct {
	ID           string          `json:"id"`
	Number       string          `json:"number" validate:"required"`
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name" validate:"required"`
	Date         time.Time       `json:"date"`
	Status       PurchaseStatus  `json:"status" validate:"omitempty,oneof=PENDING PAID CANCELLED"`
	Items        []Item          `json:"items" validate:"required,min=1,dive"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

func (p *Purchase) itemsCarryRates() bool {
	for _, it := range p.Items {
		if it.TaxRate.IsPositive() {
			return true
		}
	}
	return false
}

// Recalculate derives the subtotal from the items. The tax is the sum of
// the item taxes when any item carries a rate, otherwise the header tax is
// kept as entered.
func (p *Purchase) Recalculate() {
	p.Subtotal = decimal.Zero
	for _, it := range p.Items {
		p.Subtotal = p.Subtotal.Add(it.Base())
	}
	if p.itemsCarryRates() {
		p.Tax = decimal.Zero
		for _, it := range p.Items {
			p.Tax = p.Tax.Add(it.Tax())
		}
	}
	p.Total = p.Subtotal.Add(p.Tax)
}

// ItemTaxes returns the VAT attributed to each item, in item order. Items
// with rates use them. Otherwise the header tax is split pro rata over the
// item bases, with the rounding remainder on the last item so the parts add
// up to the header.
func (p *Purchase) ItemTaxes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(p.Items))
	if p.itemsCarryRates() {
		for i, it := range p.Items {
			out[i] = it.Tax()
		}
		return out
	}
	for i := range out {
		out[i] = decimal.Zero
	}
	if !p.Tax.IsPositive() || len(p.Items) == 0 {
		return out
	}

	subtotal := decimal.Zero
	for _, it := range p.Items {
		subtotal = subtotal.Add(it.Base())
	}
	if subtotal.IsZero() {
		out[len(out)-1] = p.Tax
		return out
	}
	assigned := decimal.Zero
	for i, it := range p.Items {
		if i == len(p.Items)-1 {
			out[i] = p.Tax.Sub(assigned)
			break
		}
		out[i] = money.Round(p.Tax.Mul(it.Base()).Div(subtotal))
		assigned = assigned.Add(out[i])
	}
	return out
}

// Validate checks a purchase before it is stored.
func (p *Purchase) Validate() error {
	switch p.Status {
	case PurchasePending, PurchasePaid, PurchaseCancelled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	if strings.TrimSpace(p.SupplierName) == "" && strings.TrimSpace(p.SupplierID) == "" {
		return ErrMissingParty
	}
	if p.Tax.IsNegative() {
		return ErrNegativeAmount
	}
	if len(p.Items) == 0 {
		return ErrNoItems
	}
	for _, it := range p.Items {
		if err := it.validate(); err != nil {
			return err
		}
	}
	return nil
}
