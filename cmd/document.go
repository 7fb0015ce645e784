package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/documents"
	"github.com/simonvc/pgcledger/internal/money"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"fatura"},
	Short:   "Manage sales invoices",
}

var purchaseCmd = &cobra.Command{
	Use:     "purchase",
	Aliases: []string{"compra"},
	Short:   "Manage supplier documents",
}

var (
	docFile   string
	docStatus string
)

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var inv documents.Invoice
		if err := readJSON(docFile, &inv); err != nil {
			return err
		}
		created, err := newClient().CreateInvoice(context.Background(), &inv)
		if err != nil {
			return err
		}
		fmt.Printf("Invoice created: %s %s total %s\n", created.ID, created.Number, money.FormatKz(created.Total))
		return nil
	},
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListInvoices(context.Background(), client.DocumentFilter{Status: docStatus})
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No invoices found.")
			return nil
		}
		fmt.Printf("%-36s %-14s %-10s %-28s %-10s %16s\n", "ID", "NUMBER", "DATE", "CLIENT", "STATUS", "TOTAL")
		for _, inv := range list {
			fmt.Printf("%-36s %-14s %-10s %-28s %-10s %16s\n", inv.ID, inv.Number, inv.Date.Format(time.DateOnly),
				truncate(inv.ClientName, 28), inv.Status, money.Format(inv.Total))
		}
		return nil
	},
}

var invoiceStatusCmd = &cobra.Command{
	Use:   "status [id] [DRAFT|CERTIFIED|CANCELLED]",
	Short: "Change the status of an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := newClient().SetInvoiceStatus(context.Background(), args[0], documents.InvoiceStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("Invoice %s is now %s\n", inv.Number, inv.Status)
		return nil
	},
}

var purchaseCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a supplier document from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var p documents.Purchase
		if err := readJSON(docFile, &p); err != nil {
			return err
		}
		created, err := newClient().CreatePurchase(context.Background(), &p)
		if err != nil {
			return err
		}
		fmt.Printf("Purchase created: %s %s total %s\n", created.ID, created.Number, money.FormatKz(created.Total))
		return nil
	},
}

var purchaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supplier documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListPurchases(context.Background(), client.DocumentFilter{Status: docStatus})
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No purchases found.")
			return nil
		}
		fmt.Printf("%-36s %-14s %-10s %-28s %-10s %16s\n", "ID", "NUMBER", "DATE", "SUPPLIER", "STATUS", "TOTAL")
		for _, p := range list {
			fmt.Printf("%-36s %-14s %-10s %-28s %-10s %16s\n", p.ID, p.Number, p.Date.Format(time.DateOnly),
				truncate(p.SupplierName, 28), p.Status, money.Format(p.Total))
		}
		return nil
	},
}

var purchaseStatusCmd = &cobra.Command{
	Use:   "status [id] [PENDING|PAID|CANCELLED]",
	Short: "Change the status of a supplier document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newClient().SetPurchaseStatus(context.Background(), args[0], documents.PurchaseStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("Purchase %s is now %s\n", p.Number, p.Status)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{invoiceCreateCmd, purchaseCreateCmd} {
		c.Flags().StringVarP(&docFile, "file", "f", "", "JSON document")
		c.MarkFlagRequired("file")
	}
	for _, c := range []*cobra.Command{invoiceListCmd, purchaseListCmd} {
		c.Flags().StringVar(&docStatus, "status", "", "Filter by status")
	}

	invoiceCmd.AddCommand(invoiceCreateCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceStatusCmd)
	purchaseCmd.AddCommand(purchaseCreateCmd)
	purchaseCmd.AddCommand(purchaseListCmd)
	purchaseCmd.AddCommand(purchaseStatusCmd)

	rootCmd.AddCommand(invoiceCmd)
	rootCmd.AddCommand(purchaseCmd)
}
