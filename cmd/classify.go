package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/money"
)

var sourceKinds = map[string]ledger.SourceKind{
	"sales":           ledger.SourceSales,
	"purchases":       ledger.SourcePurchase,
	"payroll":         ledger.SourcePayroll,
	"payroll-payment": ledger.SourcePayrollPayment,
}

func kindArg(name string) (ledger.SourceKind, error) {
	k, ok := sourceKinds[name]
	if !ok {
		return "", fmt.Errorf("unknown source %q: use sales, purchases, payroll or payroll-payment", name)
	}
	return k, nil
}

var classifyCmd = &cobra.Command{
	Use:     "classify",
	Aliases: []string{"classificar"},
	Short:   "Turn pending documents into journal transactions",
}

func printClassification(v *client.Classification) {
	if len(v.Entries) == 0 && len(v.Unresolved) == 0 {
		fmt.Println("Nothing pending.")
		return
	}
	for _, e := range v.Entries {
		fmt.Printf("%-12s %s  %s  %s\n", e.Status, e.Date.Format(time.DateOnly), keyArg(e.Key), truncate(e.Description, 50))
		for _, l := range e.Lines {
			side, amt := "DR", l.Debit
			if l.Credit.IsPositive() {
				side, amt = "CR", l.Credit
			}
			account := l.Account
			if account == "" {
				account = "?"
			}
			fmt.Printf("    %-2s %-14s %-16s %16s\n", side, l.Role, account, money.Format(amt))
		}
	}
	for _, r := range v.Unresolved {
		fmt.Printf("UNRESOLVED   %s  %s\n", keyArg(r.Key), r.Reason)
	}
}

// keyArg renders a key the way --set expects it.
func keyArg(k classify.Key) string {
	if k.ItemID == "" {
		return k.DocumentID
	}
	return k.DocumentID + "/" + k.ItemID
}

// parseOverride reads "document[/item]:role=account".
func parseOverride(kind ledger.SourceKind, s string) (client.Override, error) {
	ref, assignment, ok := strings.Cut(s, ":")
	if !ok {
		return client.Override{}, fmt.Errorf("invalid --set %q, expected document[/item]:role=account", s)
	}
	role, account, ok := strings.Cut(assignment, "=")
	if !ok || role == "" || account == "" {
		return client.Override{}, fmt.Errorf("invalid --set %q, expected document[/item]:role=account", s)
	}
	doc, item, _ := strings.Cut(ref, "/")
	return client.Override{
		Key:     classify.Key{Kind: kind, DocumentID: doc, ItemID: item},
		Role:    role,
		Account: account,
	}, nil
}

var classifyListCmd = &cobra.Command{
	Use:   "list [sales|purchases|payroll|payroll-payment]",
	Short: "Show the pending entries of a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := kindArg(args[0]); err != nil {
			return err
		}
		v, err := newClient().Classification(context.Background(), args[0])
		if err != nil {
			return err
		}
		printClassification(v)
		return nil
	},
}

var (
	classifyAuto   bool
	classifySet    []string
	classifyDocs   []string
	classifyDryRun bool
)

var classifyPostCmd = &cobra.Command{
	Use:   "post [sales|purchases|payroll|payroll-payment]",
	Short: "Classify pending entries and post them to the journal",
	Long: `Classify the pending entries of a source and post them as one batch.
--auto fills the accounts from the configured mapping. --set assigns an account
to one line of an entry: "<document>:debit=31.1.2.1.42" for an entry built from
a whole document, "<document>/<item>:credit=62.1" for one item line. The
identifiers are the ones printed by "classify list".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindArg(args[0])
		if err != nil {
			return err
		}
		req := client.ClassifyRequest{Documents: classifyDocs, Auto: classifyAuto}
		for _, s := range classifySet {
			o, err := parseOverride(kind, s)
			if err != nil {
				return err
			}
			req.Overrides = append(req.Overrides, o)
		}

		c := newClient()
		ctx := context.Background()
		preview, err := c.PreviewClassification(ctx, args[0], req)
		if err != nil {
			return err
		}
		printClassification(&preview.Classification)
		if !preview.Ready {
			return fmt.Errorf("not ready to post: %s", preview.Problem)
		}
		if classifyDryRun {
			fmt.Printf("\n%d transactions and %d new accounts would be posted.\n",
				len(preview.Batch.Transactions), len(preview.Batch.NewAccounts))
			return nil
		}

		batch, err := c.PostClassification(ctx, args[0], req)
		if err != nil {
			return err
		}
		fmt.Printf("\nPosted %d transactions for %d documents.\n", len(batch.Transactions), len(batch.Processed))
		for _, a := range batch.NewAccounts {
			fmt.Printf("  new account %s %s\n", a.Code, a.Description)
		}
		return nil
	},
}

func init() {
	classifyPostCmd.Flags().BoolVar(&classifyAuto, "auto", false, "Fill accounts from the configured mapping")
	classifyPostCmd.Flags().StringSliceVar(&classifySet, "set", nil, "Assign an account: document[/item]:role=account (can be repeated)")
	classifyPostCmd.Flags().StringSliceVar(&classifyDocs, "document", nil, "Only these document IDs (can be repeated)")
	classifyPostCmd.Flags().BoolVar(&classifyDryRun, "dry-run", false, "Show the batch without posting it")

	classifyCmd.AddCommand(classifyListCmd)
	classifyCmd.AddCommand(classifyPostCmd)
	rootCmd.AddCommand(classifyCmd)
}
