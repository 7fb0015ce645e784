package documents

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestInvoiceRecalculate(t *testing.T) {
	inv := Invoice{
		Number: "FT 2024/1", Type: TypeFatura, ClientName: "Cliente", Status: InvoiceDraft,
		Items: []Item{
			{Description: "Consultoria", Kind: KindService, Quantity: d("2"), UnitPrice: d("5000"), TaxRate: d("14")},
			{Description: "Isento", Kind: KindProduct, Quantity: d("1"), UnitPrice: d("250.50")},
		},
	}
	require.NoError(t, inv.Validate())
	inv.Recalculate()
	assert.True(t, inv.Subtotal.Equal(d("10250.50")))
	assert.True(t, inv.Tax.Equal(d("1400")))
	assert.True(t, inv.Total.Equal(d("11650.50")))
	assert.False(t, inv.IsCreditNote())

	inv.Type = TypeNotaCredito
	assert.True(t, inv.IsCreditNote())
}

func TestInvoiceValidate(t *testing.T) {
	base := Invoice{Type: TypeFatura, Status: InvoiceDraft, ClientName: "C",
		Items: []Item{{Description: "x", Quantity: d("1"), UnitPrice: d("1")}}}

	bad := base
	bad.Type = "XX"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidType)

	bad = base
	bad.Items = nil
	assert.ErrorIs(t, bad.Validate(), ErrNoItems)

	bad = base
	bad.Items = []Item{{Description: "x", Quantity: d("0"), UnitPrice: d("1")}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidQuantity)

	bad = base
	bad.ClientName = ""
	assert.ErrorIs(t, bad.Validate(), ErrMissingParty)

	bad = base
	bad.Status = ""
	assert.ErrorIs(t, bad.Validate(), ErrInvalidStatus)
}

func TestPurchaseItemTaxes(t *testing.T) {
	t.Run("item rates win", func(t *testing.T) {
		p := Purchase{Tax: d("999"), Items: []Item{
			{Description: "a", Quantity: d("1"), UnitPrice: d("1000"), TaxRate: d("14")},
		}}
		p.Recalculate()
		assert.True(t, p.Tax.Equal(d("140")))
		assert.True(t, p.ItemTaxes()[0].Equal(d("140")))
	})

	t.Run("header tax split pro rata", func(t *testing.T) {
		p := Purchase{Tax: d("100"), Items: []Item{
			{Description: "a", Quantity: d("1"), UnitPrice: d("1")},
			{Description: "b", Quantity: d("1"), UnitPrice: d("1")},
			{Description: "c", Quantity: d("1"), UnitPrice: d("1")},
		}}
		p.Recalculate()
		assert.True(t, p.Tax.Equal(d("100")))
		assert.True(t, p.Total.Equal(d("103")))

		taxes := p.ItemTaxes()
		require.Len(t, taxes, 3)
		assert.True(t, taxes[0].Equal(d("33.33")))
		assert.True(t, taxes[1].Equal(d("33.33")))
		assert.True(t, taxes[2].Equal(d("33.34")))
	})

	t.Run("no tax", func(t *testing.T) {
		p := Purchase{Items: []Item{{Description: "a", Quantity: d("1"), UnitPrice: d("10")}}}
		assert.True(t, p.ItemTaxes()[0].IsZero())
	})
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, InvoiceDraft.CanBecome(InvoiceCertified))
	assert.True(t, InvoiceCertified.CanBecome(InvoiceCancelled))
	assert.False(t, InvoiceCertified.CanBecome(InvoiceDraft))
	assert.False(t, InvoiceCancelled.CanBecome(InvoiceCertified))

	assert.True(t, PurchasePending.CanBecome(PurchasePaid))
	assert.False(t, PurchasePaid.CanBecome(PurchasePending))
	assert.False(t, PurchaseCancelled.CanBecome(PurchasePaid))
}

func TestApplyDefaultRate(t *testing.T) {
	inv := Invoice{
		Number: "FT 2026/9", Type: TypeFatura, ClientName: "Cliente", Status: InvoiceDraft,
		Items: []Item{
			{Description: "Sem taxa", Quantity: d("1"), UnitPrice: d("1000")},
			{Description: "Taxa própria", Quantity: d("1"), UnitPrice: d("1000"), TaxRate: d("7")},
			{Description: "Isento", Quantity: d("1"), UnitPrice: d("1000"), Exempt: true},
		},
	}
	inv.ApplyDefaultRate(d("14"))
	require.NoError(t, inv.Validate())
	inv.Recalculate()

	assert.True(t, inv.Items[0].TaxRate.Equal(d("14")))
	assert.True(t, inv.Items[1].TaxRate.Equal(d("7")))
	assert.True(t, inv.Items[2].TaxRate.IsZero())
	assert.True(t, inv.Tax.Equal(d("210")))

	inv.Items[2].TaxRate = d("14")
	assert.ErrorIs(t, inv.Validate(), ErrInvalidTaxRate)
}
