package classify

import (
	"fmt"
	"time"

	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/payroll"
)

// Source is a document that can be classified. The concrete types are
// SalesSource, PurchaseSource, PayrollSource and PayrollPaymentSource.
type Source interface {
	Kind() ledger.SourceKind
	DocumentID() string
}

type SalesSource struct {
	Invoice documents.Invoice
}

func (s SalesSource) Kind() ledger.SourceKind { return ledger.SourceSales }
func (s SalesSource) DocumentID() string      { return s.Invoice.ID }

type PurchaseSource struct {
	Purchase documents.Purchase
}

func (s PurchaseSource) Kind() ledger.SourceKind { return ledger.SourcePurchase }
func (s PurchaseSource) DocumentID() string      { return s.Purchase.ID }

// PayrollSource books the cost of a certified payroll run.
type PayrollSource struct {
	Run payroll.Run
}

func (s PayrollSource) Kind() ledger.SourceKind { return ledger.SourcePayroll }
func (s PayrollSource) DocumentID() string      { return s.Run.ID }

// PayrollPaymentSource books the transfer of net salaries from the bank.
type PayrollPaymentSource struct {
	Run payroll.Run
}

func (s PayrollPaymentSource) Kind() ledger.SourceKind { return ledger.SourcePayrollPayment }
func (s PayrollPaymentSource) DocumentID() string      { return s.Run.ID }

// SourceKey is the processed-source id of a document.
func SourceKey(src Source) Key {
	return Key{Kind: src.Kind(), DocumentID: src.DocumentID()}
}

func periodEnd(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

func periodLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
