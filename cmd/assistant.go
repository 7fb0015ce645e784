package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/money"
)

var askYear int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the accounting assistant about the books",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := newClient().Ask(context.Background(), strings.Join(args, " "), askYear)
		if err != nil {
			return err
		}
		fmt.Println(reply.Text)
		return nil
	},
}

var extractInvoiceCmd = &cobra.Command{
	Use:   "read-invoice [file]",
	Short: "Read an invoice from plain text with the assistant",
	Long:  "Read an invoice from plain text with the assistant and print the draft. Nothing is saved.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		inv, err := newClient().ExtractInvoice(context.Background(), string(text))
		if err != nil {
			return err
		}
		fmt.Printf("Number: %s\nClient: %s %s\nDate:   %s\n", inv.Number, inv.ClientID, inv.ClientName, inv.Date.Format(time.DateOnly))
		for _, it := range inv.Items {
			fmt.Printf("  %-36s %8s x %14s  IVA %s%%\n", truncate(it.Description, 36), it.Quantity, money.Format(it.UnitPrice), it.TaxRate)
		}
		fmt.Printf("Total:  %s\n", money.FormatKz(inv.Total))
		return nil
	},
}

func init() {
	askCmd.Flags().IntVar(&askYear, "year", time.Now().Year(), "Year the question is about")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(extractInvoiceCmd)
}
