package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/money"
	"github.com/simonvc/pgcledger/internal/payroll"
)

var employeeCmd = &cobra.Command{
	Use:     "employee",
	Aliases: []string{"funcionario"},
	Short:   "Manage employees and their HR transactions",
}

var (
	empName      string
	empNIF       string
	empPosition  string
	empBase      string
	empFood      string
	empTransport string
	empFamily    string
	empOther     string
)

type amountFlag struct {
	name string
	raw  string
	dst  *decimal.Decimal
}

// parseAmounts fills each dst from its flag value. Empty flags are skipped.
func parseAmounts(flags ...amountFlag) error {
	for _, f := range flags {
		if f.raw == "" {
			continue
		}
		v, err := money.Parse(f.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return nil
}

var employeeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an employee",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := &payroll.Employee{Name: empName, NIF: empNIF, Position: empPosition, Active: true}
		err := parseAmounts(
			amountFlag{"base salary", empBase, &e.BaseSalary},
			amountFlag{"food subsidy", empFood, &e.FoodSubsidy},
			amountFlag{"transport subsidy", empTransport, &e.TransportSubsidy},
			amountFlag{"family subsidy", empFamily, &e.FamilySubsidy},
			amountFlag{"other subsidy", empOther, &e.OtherSubsidy},
		)
		if err != nil {
			return err
		}
		created, err := newClient().CreateEmployee(context.Background(), e)
		if err != nil {
			return err
		}
		fmt.Printf("Employee created: %s %s (%s)\n", created.ID, created.Name, money.FormatKz(created.BaseSalary))
		return nil
	},
}

var empListAll bool

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListEmployees(context.Background(), !empListAll)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No employees found.")
			return nil
		}
		fmt.Printf("%-36s %-28s %-14s %16s %s\n", "ID", "NAME", "NIF", "BASE", "ACTIVE")
		for _, e := range list {
			fmt.Printf("%-36s %-28s %-14s %16s %v\n", e.ID, truncate(e.Name, 28), e.NIF, money.Format(e.BaseSalary), e.Active)
		}
		return nil
	},
}

var (
	hrEmployee    string
	hrType        string
	hrAmount      string
	hrDate        string
	hrDescription string
)

var hrAddCmd = &cobra.Command{
	Use:   "hr",
	Short: "Record a bonus, allowance, absence or advance",
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := money.Parse(hrAmount)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		date, err := parseDate(hrDate)
		if err != nil {
			return err
		}
		if date.IsZero() {
			date = time.Now()
		}
		t, err := newClient().CreateHrTransaction(context.Background(), &payroll.HrTransaction{
			EmployeeID:  hrEmployee,
			Type:        payroll.TransactionType(hrType),
			Amount:      amt,
			Date:        date,
			Description: hrDescription,
		})
		if err != nil {
			return err
		}
		fmt.Printf("HR transaction recorded: %s %s %s\n", t.ID, t.Type, money.FormatKz(t.Amount))
		return nil
	},
}

// payroll
var payrollCmd = &cobra.Command{
	Use:     "payroll",
	Aliases: []string{"salarios"},
	Short:   "Compute and certify monthly payroll",
}

var (
	payrollYear  int
	payrollMonth int
)

func printRun(run *payroll.Run) {
	fmt.Printf("\n  FOLHA DE SALÁRIOS %04d-%02d  [%s]\n\n", run.Year, run.Month, run.Status)
	fmt.Printf("  %-26s %14s %12s %12s %12s %12s %14s\n", "EMPLOYEE", "GROSS", "SUBSIDIES", "INSS", "IRT", "ADVANCES", "NET")
	for _, s := range run.Slips {
		fmt.Printf("  %-26s %14s %12s %12s %12s %12s %14s\n",
			truncate(s.EmployeeName, 26), money.Format(s.Gross), money.Format(s.Subsidies),
			money.Format(s.INSS), money.Format(s.IRT), money.Format(s.Advances), money.Format(s.Net))
	}
	t := run.Totals
	fmt.Printf("  %-26s %14s %12s %12s %12s %12s %14s\n", "TOTALS",
		money.Format(t.Gross), money.Format(t.Subsidies), money.Format(t.INSS),
		money.Format(t.IRT), money.Format(t.Advances), money.Format(t.Net))
	fmt.Printf("\n  Employer INSS: %s\n", money.FormatKz(t.EmployerINSS))
}

var payrollPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Compute the payroll of a month without saving it",
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := newClient().PreviewPayroll(context.Background(), payrollYear, payrollMonth)
		if err != nil {
			return err
		}
		printRun(run)
		return nil
	},
}

var payrollCertifyCmd = &cobra.Command{
	Use:   "certify",
	Short: "Freeze the payroll of a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := newClient().CertifyPayroll(context.Background(), payrollYear, payrollMonth)
		if err != nil {
			return err
		}
		printRun(run)
		fmt.Printf("\nPayroll certified: %s\n", run.ID)
		return nil
	},
}

var withholdingsCmd = &cobra.Command{
	Use:   "withholdings [gross]",
	Short: "Compute INSS and IRT on a gross salary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gross, err := money.Parse(args[0])
		if err != nil {
			return err
		}
		wh, err := newClient().Withholdings(context.Background(), gross)
		if err != nil {
			return err
		}
		fmt.Printf("Gross:         %19s\n", money.FormatKz(wh.Gross))
		fmt.Printf("INSS:          %19s\n", money.FormatKz(wh.INSS))
		fmt.Printf("IRT:           %19s\n", money.FormatKz(wh.IRT))
		fmt.Printf("Net:           %19s\n", money.FormatKz(wh.Net))
		fmt.Printf("Employer INSS: %19s\n", money.FormatKz(wh.EmployerINSS))
		return nil
	},
}

func init() {
	employeeAddCmd.Flags().StringVar(&empName, "name", "", "Employee name")
	employeeAddCmd.Flags().StringVar(&empNIF, "nif", "", "Tax number")
	employeeAddCmd.Flags().StringVar(&empPosition, "position", "", "Job title")
	employeeAddCmd.Flags().StringVar(&empBase, "base", "", "Base salary")
	employeeAddCmd.Flags().StringVar(&empFood, "food", "", "Food subsidy")
	employeeAddCmd.Flags().StringVar(&empTransport, "transport", "", "Transport subsidy")
	employeeAddCmd.Flags().StringVar(&empFamily, "family", "", "Family subsidy")
	employeeAddCmd.Flags().StringVar(&empOther, "other", "", "Other subsidies")
	employeeAddCmd.MarkFlagRequired("name")
	employeeAddCmd.MarkFlagRequired("base")

	employeeListCmd.Flags().BoolVar(&empListAll, "all", false, "Include inactive employees")

	hrAddCmd.Flags().StringVar(&hrEmployee, "employee", "", "Employee ID")
	hrAddCmd.Flags().StringVar(&hrType, "type", "", "BONUS, ALLOWANCE, ABSENCE or ADVANCE")
	hrAddCmd.Flags().StringVar(&hrAmount, "amount", "", "Amount")
	hrAddCmd.Flags().StringVar(&hrDate, "date", "", "Date YYYY-MM-DD (default today)")
	hrAddCmd.Flags().StringVar(&hrDescription, "description", "", "Description")
	hrAddCmd.MarkFlagRequired("employee")
	hrAddCmd.MarkFlagRequired("type")
	hrAddCmd.MarkFlagRequired("amount")

	employeeCmd.AddCommand(employeeAddCmd)
	employeeCmd.AddCommand(employeeListCmd)
	employeeCmd.AddCommand(hrAddCmd)

	now := time.Now()
	for _, c := range []*cobra.Command{payrollPreviewCmd, payrollCertifyCmd} {
		c.Flags().IntVar(&payrollYear, "year", now.Year(), "Year")
		c.Flags().IntVar(&payrollMonth, "month", int(now.Month()), "Month")
	}
	payrollCmd.AddCommand(payrollPreviewCmd)
	payrollCmd.AddCommand(payrollCertifyCmd)
	payrollCmd.AddCommand(withholdingsCmd)

	rootCmd.AddCommand(employeeCmd)
	rootCmd.AddCommand(payrollCmd)
}
