// Package vat computes the monthly IVA settlement: output tax on certified
// sales against deductible tax on paid purchases.
package vat

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/ledger"
)

var (
	ErrInvalidPeriod     = errors.New("invalid settlement period")
	ErrAlreadyRegistered = errors.New("vat settlement already registered for this period")
	ErrNotFound          = errors.New("vat settlement not found")
	ErrNothingToSettle   = errors.New("no vat to settle")
)

const (
	LabelPayable     = "A pagar"
	LabelRecoverable = "A recuperar"

	StatusProcessed = "PROCESSED"
)

// Settlement is the IVA position of a month. TotalCredit is the output tax
// owed (liquidado) and TotalDebit the deductible input tax, each including
// its manual adjustment.
type Settlement struct {
	ID             string          `json:"id,omitempty"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	OutputVAT      decimal.Decimal `json:"output_vat"`
	InputVAT       decimal.Decimal `json:"input_vat"`
	SalesAdjust    decimal.Decimal `json:"sales_adjust"`
	PurchaseAdjust decimal.Decimal `json:"purchase_adjust"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	Balance        decimal.Decimal `json:"balance"`
	Label          string          `json:"label"`
	Status         string          `json:"status,omitempty"`
	InvoiceCount   int             `json:"invoice_count"`
	PurchaseCount  int             `json:"purchase_count"`
	TransactionID  string          `json:"transaction_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// Label names the direction of a balance. A zero balance counts as
// payable.
func Label(balance decimal.Decimal) string {
	if balance.IsNegative() {
		return LabelRecoverable
	}
	return LabelPayable
}

func inMonth(t time.Time, year, month int) bool {
	return t.Year() == year && int(t.Month()) == month
}

// ValidPeriod checks a year/month pair.
func ValidPeriod(year, month int) error {
	if year < 1900 || year > 9999 || month < 1 || month > 12 {
		return fmt.Errorf("%w: %04d-%02d", ErrInvalidPeriod, year, month)
	}
	return nil
}

// Compute builds the settlement of a month. Only certified invoices and
// paid purchases dated in the month count; credit notes reduce the output
// tax.
func Compute(year, month int, invoices []documents.Invoice, purchases []documents.Purchase, salesAdjust, purchaseAdjust decimal.Decimal) (*Settlement, error) {
	if err := ValidPeriod(year, month); err != nil {
		return nil, err
	}
	s := &Settlement{
		Year:           year,
		Month:          month,
		SalesAdjust:    salesAdjust,
		PurchaseAdjust: purchaseAdjust,
	}
	for _, inv := range invoices {
		if inv.Status != documents.InvoiceCertified || !inMonth(inv.Date, year, month) {
			continue
		}
		if inv.IsCreditNote() {
			s.OutputVAT = s.OutputVAT.Sub(inv.Tax)
		} else {
			s.OutputVAT = s.OutputVAT.Add(inv.Tax)
		}
		s.InvoiceCount++
	}
	for _, p := range purchases {
		if p.Status != documents.PurchasePaid || !inMonth(p.Date, year, month) {
			continue
		}
		s.InputVAT = s.InputVAT.Add(p.Tax)
		s.PurchaseCount++
	}
	s.TotalCredit = s.OutputVAT.Add(salesAdjust)
	s.TotalDebit = s.InputVAT.Add(purchaseAdjust)
	s.Balance = s.TotalCredit.Sub(s.TotalDebit)
	s.Label = Label(s.Balance)
	return s, nil
}

// Journal builds the transaction that closes the output and input VAT
// accounts of the month into the settlement account.
func Journal(s *Settlement, outputAccount, inputAccount, settlementAccount string) (ledger.Transaction, error) {
	tx := ledger.Transaction{
		Date:        time.Date(s.Year, time.Month(s.Month)+1, 0, 0, 0, 0, 0, time.UTC),
		Description: fmt.Sprintf("Apuramento do IVA %04d-%02d", s.Year, s.Month),
		SourceKind:  ledger.SourceVATSettlement,
		SourceID:    fmt.Sprintf("%04d-%02d", s.Year, s.Month),
	}
	add := func(code string, amount decimal.Decimal, debitSide bool) {
		if amount.IsZero() {
			return
		}
		if amount.IsNegative() {
			amount, debitSide = amount.Neg(), !debitSide
		}
		e := ledger.Entry{AccountCode: code}
		if debitSide {
			e.Debit = amount
		} else {
			e.Credit = amount
		}
		tx.Entries = append(tx.Entries, e)
	}
	add(outputAccount, s.TotalCredit, true)
	add(inputAccount, s.TotalDebit, false)
	add(settlementAccount, s.Balance, false)
	if len(tx.Entries) == 0 {
		return ledger.Transaction{}, ErrNothingToSettle
	}
	if err := tx.Validate(); err != nil {
		return ledger.Transaction{}, err
	}
	return tx, nil
}
