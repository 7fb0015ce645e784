package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/money"
)

var (
	reportYear int
	reportFrom int
	reportTo   int
)

var balanceteCmd = &cobra.Command{
	Use:   "balancete",
	Short: "Show the trial balance (balancete) of a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newClient().Balancete(context.Background(), reportYear, reportFrom, reportTo)
		if err != nil {
			return err
		}
		printBalancete(b)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [code]",
	Short: "Show the extract of an account for a year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := newClient().Extract(context.Background(), args[0], reportYear)
		if err != nil {
			return err
		}
		printExtract(ex)
		return nil
	},
}

func printBalancete(b *ledger.Balancete) {
	w := 132
	fmt.Println()
	fmt.Println(center(fmt.Sprintf("BALANCETE %d  (meses %02d a %02d)", b.Year, b.FromMonth, b.ToMonth), w))
	fmt.Println(center(strings.Repeat("=", 30), w))
	fmt.Println()

	fmt.Printf("  %-12s %-30s %14s %14s %14s %14s %14s %14s\n",
		"CODE", "DESCRIPTION", "OPEN DR", "OPEN CR", "DEBIT", "CREDIT", "BAL DR", "BAL CR")
	for _, l := range b.Lines {
		indent := strings.Repeat(" ", l.Level-1)
		fmt.Printf("  %-12s %-30s %14s %14s %14s %14s %14s %14s\n",
			l.Code, truncate(indent+l.Description, 30),
			amount(l.OpeningDebit), amount(l.OpeningCredit),
			amount(l.Debit), amount(l.Credit),
			amount(l.BalanceDebit), amount(l.BalanceCredit))
	}
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-43s %14s %14s %14s %14s %14s %14s\n", "TOTALS",
		money.Format(b.TotalOpeningDebit), money.Format(b.TotalOpeningCredit),
		money.Format(b.TotalDebit), money.Format(b.TotalCredit),
		money.Format(b.TotalBalanceDebit), money.Format(b.TotalBalanceCredit))

	if b.Balanced {
		fmt.Println("\n  [BALANCED]")
	} else {
		fmt.Println("\n  [UNBALANCED!]")
	}
}

func printExtract(ex *ledger.Extract) {
	w := 100
	fmt.Println()
	fmt.Println(center(fmt.Sprintf("EXTRATO %s %s  %d", ex.Account.Code, ex.Account.Description, ex.Year), w))
	fmt.Println(center(strings.Repeat("=", 30), w))
	fmt.Println()

	fmt.Printf("  %-10s %-12s %-36s %14s %14s %14s\n", "DATE", "ACCOUNT", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
	for _, l := range ex.Lines {
		date := ""
		if !l.Date.IsZero() {
			date = l.Date.Format(time.DateOnly)
		}
		fmt.Printf("  %-10s %-12s %-36s %14s %14s %14s\n",
			date, l.AccountCode, truncate(l.Description, 36),
			amount(l.Debit), amount(l.Credit), money.Format(l.Balance))
	}
	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-60s %14s %14s %14s\n", "TOTALS",
		money.Format(ex.TotalDebit), money.Format(ex.TotalCredit), money.Format(ex.Balance))
}

// opening
var openingCmd = &cobra.Command{
	Use:   "opening",
	Short: "Manage the opening balances of a year",
}

var openingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the opening balances of a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := newClient().OpeningBalances(context.Background(), reportYear)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No opening balances.")
			return nil
		}
		fmt.Printf("%-14s %16s %16s %s\n", "ACCOUNT", "DEBIT", "CREDIT", "TYPE")
		for _, r := range rows {
			fmt.Printf("%-14s %16s %16s %s\n", r.AccountCode, amount(r.Debit), amount(r.Credit), r.BalanceType)
		}
		return nil
	},
}

var openingRows []string

var openingSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the opening balances of a year",
	Long:  `Replace the opening balances of a year. Each --row is "account_code:+amount" for a debit or "account_code:-amount" for a credit. Debits and credits must match to the cent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := make([]ledger.OpeningBalance, 0, len(openingRows))
		for _, s := range openingRows {
			e, err := parseEntry(s)
			if err != nil {
				return err
			}
			rows = append(rows, ledger.OpeningBalance{AccountCode: e.AccountCode, Debit: e.Debit, Credit: e.Credit})
		}
		saved, err := newClient().SaveOpeningBalances(context.Background(), reportYear, rows)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Unbalanced != nil {
			u := apiErr.Unbalanced
			return fmt.Errorf("opening balance does not balance: debit %s, credit %s, difference %s",
				money.Format(u.TotalDebit), money.Format(u.TotalCredit), money.Format(u.Difference))
		}
		if err != nil {
			return err
		}
		fmt.Printf("Saved %d opening rows for %d.\n", len(saved), reportYear)
		return nil
	},
}

// amount leaves zero cells blank.
func amount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money.Format(d)
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func init() {
	year := time.Now().Year()
	for _, c := range []*cobra.Command{balanceteCmd, extractCmd, openingShowCmd, openingSetCmd} {
		c.Flags().IntVar(&reportYear, "year", year, "Fiscal year")
	}
	balanceteCmd.Flags().IntVar(&reportFrom, "from", 1, "First month")
	balanceteCmd.Flags().IntVar(&reportTo, "to", 12, "Last month")

	openingSetCmd.Flags().StringSliceVar(&openingRows, "row", nil, "Row as account_code:+amount or account_code:-amount (can be repeated)")
	openingSetCmd.MarkFlagRequired("row")

	openingCmd.AddCommand(openingShowCmd)
	openingCmd.AddCommand(openingSetCmd)

	rootCmd.AddCommand(balanceteCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(openingCmd)
}
