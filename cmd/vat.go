package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/money"
	"github.com/simonvc/pgcledger/internal/vat"
)

var vatCmd = &cobra.Command{
	Use:     "vat",
	Aliases: []string{"iva"},
	Short:   "Compute and register the monthly VAT settlement",
}

var (
	vatYear           int
	vatMonth          int
	vatSalesAdjust    string
	vatPurchaseAdjust string
	vatPost           bool
)

func vatAdjustments() (decimal.Decimal, decimal.Decimal, error) {
	sales, purchases := decimal.Zero, decimal.Zero
	err := parseAmounts(
		amountFlag{"sales adjustment", vatSalesAdjust, &sales},
		amountFlag{"purchase adjustment", vatPurchaseAdjust, &purchases},
	)
	return sales, purchases, err
}

func printSettlement(s *vat.Settlement) {
	fmt.Printf("\n  APURAMENTO DO IVA %04d-%02d\n\n", s.Year, s.Month)
	row := func(label string, amt decimal.Decimal) {
		fmt.Printf("  %-34s %16s\n", label, money.Format(amt))
	}
	row(fmt.Sprintf("IVA liquidado (%d faturas)", s.InvoiceCount), s.OutputVAT)
	row("Regularizações a favor do Estado", s.SalesAdjust)
	row(fmt.Sprintf("IVA dedutível (%d compras)", s.PurchaseCount), s.InputVAT)
	row("Regularizações a favor da empresa", s.PurchaseAdjust)
	fmt.Printf("  %s\n", strings.Repeat("─", 51))
	row(s.Label, s.Balance.Abs())
	if s.ID != "" {
		fmt.Printf("\n  Registered: %s  %s\n", s.ID, s.TransactionID)
	}
}

var vatShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the settlement of a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		sales, purchases, err := vatAdjustments()
		if err != nil {
			return err
		}
		s, err := newClient().VAT(context.Background(), vatYear, vatMonth, sales, purchases)
		if err != nil {
			return err
		}
		printSettlement(s)
		return nil
	},
}

var vatRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the settlement of a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		sales, purchases, err := vatAdjustments()
		if err != nil {
			return err
		}
		s, err := newClient().RegisterVAT(context.Background(), vatYear, vatMonth, sales, purchases, vatPost)
		if err != nil {
			return err
		}
		printSettlement(s)
		return nil
	},
}

var vatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered settlements",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListVAT(context.Background(), vatYear)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No settlements registered.")
			return nil
		}
		fmt.Printf("%-8s %16s %16s %16s %s\n", "PERIOD", "OUTPUT", "INPUT", "BALANCE", "LABEL")
		for _, s := range list {
			fmt.Printf("%04d-%02d  %16s %16s %16s %s\n", s.Year, s.Month,
				money.Format(s.OutputVAT), money.Format(s.InputVAT), money.Format(s.Balance), s.Label)
		}
		return nil
	},
}

func init() {
	now := time.Now()
	for _, c := range []*cobra.Command{vatShowCmd, vatRegisterCmd, vatListCmd} {
		c.Flags().IntVar(&vatYear, "year", now.Year(), "Year")
	}
	for _, c := range []*cobra.Command{vatShowCmd, vatRegisterCmd} {
		c.Flags().IntVar(&vatMonth, "month", int(now.Month()), "Month")
		c.Flags().StringVar(&vatSalesAdjust, "sales-adjust", "", "Regularisation in favour of the state")
		c.Flags().StringVar(&vatPurchaseAdjust, "purchase-adjust", "", "Regularisation in favour of the company")
	}
	vatRegisterCmd.Flags().BoolVar(&vatPost, "post", false, "Also post the closing journal transaction")

	vatCmd.AddCommand(vatShowCmd)
	vatCmd.AddCommand(vatRegisterCmd)
	vatCmd.AddCommand(vatListCmd)
	rootCmd.AddCommand(vatCmd)
}
