package store

import (
	"context"
	"fmt"

	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/payroll"
)

// PendingSources returns the documents of a kind that have not been posted
// to the journal yet. Cancelled documents are left out; drafts are kept so
// the classification screen can report them.
func (s *Store) PendingSources(ctx context.Context, kind ledger.SourceKind) ([]classify.Source, error) {
	done, err := s.processedIDs(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := []classify.Source{}

	switch kind {
	case ledger.SourceSales:
		invoices, err := s.ListInvoices(ctx, DocumentFilter{})
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			if done[inv.ID] || inv.Status == documents.InvoiceCancelled {
				continue
			}
			out = append(out, classify.SalesSource{Invoice: inv})
		}

	case ledger.SourcePurchase:
		purchases, err := s.ListPurchases(ctx, DocumentFilter{})
		if err != nil {
			return nil, err
		}
		for _, p := range purchases {
			if done[p.ID] || p.Status == documents.PurchaseCancelled {
				continue
			}
			out = append(out, classify.PurchaseSource{Purchase: p})
		}

	case ledger.SourcePayroll:
		runs, err := s.ListPayrollRuns(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range runs {
			if done[r.ID] || r.Status != payroll.RunCertified {
				continue
			}
			out = append(out, classify.PayrollSource{Run: r})
		}

	case ledger.SourcePayrollPayment:
		// A run is paid after its processing entry is posted.
		booked, err := s.processedIDs(ctx, ledger.SourcePayroll)
		if err != nil {
			return nil, err
		}
		runs, err := s.ListPayrollRuns(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range runs {
			if done[r.ID] || !booked[r.ID] {
				continue
			}
			out = append(out, classify.PayrollPaymentSource{Run: r})
		}

	default:
		return nil, fmt.Errorf("%w: %q", classify.ErrUnknownSource, kind)
	}
	return out, nil
}
