package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download reports as Excel workbooks",
}

var (
	exportOut   string
	exportYear  int
	exportMonth int
	exportFrom  int
	exportTo    int
)

func writeExport(defaultName string, data []byte) error {
	name := exportOut
	if name == "" {
		name = defaultName
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", name, len(data))
	return nil
}

var exportBalanceteCmd = &cobra.Command{
	Use:   "balancete",
	Short: "Export the balancete",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := newClient().ExportBalancete(context.Background(), exportYear, exportFrom, exportTo)
		if err != nil {
			return err
		}
		return writeExport(fmt.Sprintf("balancete-%04d-%02d-%02d.xlsx", exportYear, exportFrom, exportTo), data)
	},
}

var exportExtractCmd = &cobra.Command{
	Use:   "extract [code]",
	Short: "Export the extract of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := newClient().ExportExtract(context.Background(), args[0], exportYear)
		if err != nil {
			return err
		}
		return writeExport(fmt.Sprintf("extrato-%s-%04d.xlsx", args[0], exportYear), data)
	},
}

var exportPayrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Export a certified payroll",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := newClient().ExportPayroll(context.Background(), exportYear, exportMonth)
		if err != nil {
			return err
		}
		return writeExport(fmt.Sprintf("salarios-%04d-%02d.xlsx", exportYear, exportMonth), data)
	},
}

var exportVATCmd = &cobra.Command{
	Use:   "vat",
	Short: "Export the registered VAT settlements of a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := newClient().ExportVAT(context.Background(), exportYear)
		if err != nil {
			return err
		}
		return writeExport(fmt.Sprintf("iva-%04d.xlsx", exportYear), data)
	},
}

func init() {
	now := time.Now()
	exportCmd.PersistentFlags().StringVarP(&exportOut, "output", "o", "", "Output file")
	exportCmd.PersistentFlags().IntVar(&exportYear, "year", now.Year(), "Year")
	exportBalanceteCmd.Flags().IntVar(&exportFrom, "from", 1, "First month")
	exportBalanceteCmd.Flags().IntVar(&exportTo, "to", 12, "Last month")
	exportPayrollCmd.Flags().IntVar(&exportMonth, "month", int(now.Month()), "Month")

	exportCmd.AddCommand(exportBalanceteCmd)
	exportCmd.AddCommand(exportExtractCmd)
	exportCmd.AddCommand(exportPayrollCmd)
	exportCmd.AddCommand(exportVATCmd)
	rootCmd.AddCommand(exportCmd)
}
