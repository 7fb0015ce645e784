package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/money"
)

var transactionCmd = &cobra.Command{
	Use:     "transaction",
	Aliases: []string{"txn"},
	Short:   "Manage journal transactions",
}

// transaction create
var (
	txnDescription string
	txnDate        string
	txnEntries     []string // format: "account_code:+amount" debits, "account_code:-amount" credits
)

// parseEntry reads "43.1:+5000" as a debit and "51:-5000" as a credit.
func parseEntry(s string) (ledger.Entry, error) {
	code, amount, ok := strings.Cut(s, ":")
	if !ok || code == "" {
		return ledger.Entry{}, fmt.Errorf("invalid entry format %q, expected account_code:+amount or account_code:-amount", s)
	}
	credit := strings.HasPrefix(amount, "-")
	amt, err := money.Parse(strings.TrimLeft(amount, "+-"))
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("invalid amount in entry %q: %w", s, err)
	}
	if credit {
		return ledger.Entry{AccountCode: code, Credit: amt}, nil
	}
	return ledger.Entry{AccountCode: code, Debit: amt}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

var transactionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Post a manual journal transaction",
	Long:  `Post a balanced journal transaction.\nEach --entry is "account_code:+amount" for a debit or "account_code:-amount" for a credit (e.g. "43.1:+5000" "51:-5000").`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDate(txnDate)
		if err != nil {
			return err
		}
		txn := &ledger.Transaction{
			Date:        date,
			Description: txnDescription,
		}
		for _, e := range txnEntries {
			entry, err := parseEntry(e)
			if err != nil {
				return err
			}
			txn.Entries = append(txn.Entries, entry)
		}

		created, err := newClient().CreateTransaction(context.Background(), txn)
		if err != nil {
			return err
		}

		fmt.Printf("Transaction created: %s\n", created.ID)
		printEntries(created)
		return nil
	},
}

func printEntries(txn *ledger.Transaction) {
	fmt.Printf("  %-4s %-14s %16s %s\n", "TYPE", "ACCOUNT", "AMOUNT", "MEMO")
	for _, e := range txn.Entries {
		direction, amt := "DR", e.Debit
		if e.Credit.IsPositive() {
			direction, amt = "CR", e.Credit
		}
		fmt.Printf("  %-4s %-14s %16s %s\n", direction, e.AccountCode, money.Format(amt), e.Memo)
	}
}

// transaction list
var (
	txnListAccount string
	txnListKind    string
	txnListLimit   int
)

var transactionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		txns, err := newClient().ListTransactions(context.Background(), client.TxnFilter{
			AccountCode: txnListAccount,
			SourceKind:  txnListKind,
			Limit:       txnListLimit,
		})
		if err != nil {
			return err
		}

		if len(txns) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}

		fmt.Printf("%-36s %-10s %-16s %-8s %s\n", "ID", "DATE", "SOURCE", "ENTRIES", "DESCRIPTION")
		fmt.Printf("%-36s %-10s %-16s %-8s %s\n", "----", "----", "------", "-------", "-----------")
		for _, t := range txns {
			fmt.Printf("%-36s %-10s %-16s %-8d %s\n",
				t.ID,
				t.Date.Format(time.DateOnly),
				t.SourceKind,
				len(t.Entries),
				truncate(t.Description, 40),
			)
		}
		return nil
	},
}

// transaction get
var transactionGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get transaction details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txn, err := newClient().GetTransaction(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", txn.ID)
		fmt.Printf("Date:        %s\n", txn.Date.Format(time.DateOnly))
		fmt.Printf("Description: %s\n", txn.Description)
		fmt.Printf("Source:      %s %s\n", txn.SourceKind, txn.SourceID)
		fmt.Printf("Posted:      %s\n", txn.PostedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Finalized:   %v\n", txn.Finalized)
		fmt.Printf("Entries:\n")
		printEntries(txn)
		return nil
	},
}

func init() {
	transactionCreateCmd.Flags().StringVar(&txnDescription, "description", "", "Transaction description")
	transactionCreateCmd.Flags().StringVar(&txnDate, "date", "", "Transaction date YYYY-MM-DD (default today)")
	transactionCreateCmd.Flags().StringSliceVar(&txnEntries, "entry", nil, "Entry as account_code:+amount or account_code:-amount (can be repeated)")
	transactionCreateCmd.MarkFlagRequired("description")
	transactionCreateCmd.MarkFlagRequired("entry")

	transactionListCmd.Flags().StringVar(&txnListAccount, "account", "", "Filter by account code (descendants included)")
	transactionListCmd.Flags().StringVar(&txnListKind, "kind", "", "Filter by source kind (MANUAL, SALES, PURCHASE, PAYROLL, PAYROLL_PAYMENT, VAT_SETTLEMENT)")
	transactionListCmd.Flags().IntVar(&txnListLimit, "limit", 100, "Maximum results")

	transactionCmd.AddCommand(transactionCreateCmd)
	transactionCmd.AddCommand(transactionListCmd)
	transactionCmd.AddCommand(transactionGetCmd)

	rootCmd.AddCommand(transactionCmd)
}
