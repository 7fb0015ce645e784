// Package documents models the source documents that feed the journal:
// sales invoices and supplier purchases.
package documents

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/money"
)

type ItemKind string

const (
	KindProduct ItemKind = "PRODUCT"
	KindService ItemKind = "SERVICE"
)

// Item is one line of an invoice or purchase. Rubrica optionally pins the
// PGC account the line is classified to. Exempt marks a line that carries
// no VAT even when a default rate applies.
type Item struct {
	ID          string          `json:"id"`
	Description string          `json:"description" validate:"required"`
	Kind        ItemKind        `json:"kind" validate:"omitempty,oneof=PRODUCT SERVICE"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Rubrica     string          `json:"rubrica,omitempty"`
	Exempt      bool            `json:"exempt,omitempty"`
}

// Base is quantity times unit price.
func (i Item) Base() decimal.Decimal {
	return money.Round(i.Quantity.Mul(i.UnitPrice))
}

// Tax is the VAT of the line at its own rate.
func (i Item) Tax() decimal.Decimal {
	if i.Exempt || !i.TaxRate.IsPositive() {
		return decimal.Zero
	}
	return money.Percent(i.Base(), i.TaxRate)
}

func (i Item) validate() error {
	if !i.Quantity.IsPositive() {
		return fmt.Errorf("%q: %w", i.Description, ErrInvalidQuantity)
	}
	if i.UnitPrice.IsNegative() || i.TaxRate.IsNegative() {
		return fmt.Errorf("%q: %w", i.Description, ErrNegativeAmount)
	}
	if i.Exempt && i.TaxRate.IsPositive() {
		return fmt.Errorf("%q: %w: exempt item with rate %s", i.Description, ErrInvalidTaxRate, i.TaxRate)
	}
	if i.Kind != "" && i.Kind != KindProduct && i.Kind != KindService {
		return fmt.Errorf("%w: item kind %s", ErrInvalidType, i.Kind)
	}
	return nil
}
