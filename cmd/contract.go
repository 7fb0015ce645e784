package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/contracts"
	"github.com/simonvc/pgcledger/internal/money"
)

var contractCmd = &cobra.Command{
	Use:     "contract",
	Aliases: []string{"contrato"},
	Short:   "Manage employment contracts",
}

var (
	contractFile     string
	contractCompany  string
	contractEmployee string
)

var contractSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create or replace a contract from a JSON file",
	Long:  "Create or replace a contract. A contract with the same company, employee, type and start date is replaced.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var c contracts.Contract
		if err := readJSON(contractFile, &c); err != nil {
			return err
		}
		saved, err := newClient().UpsertContract(context.Background(), &c)
		if err != nil {
			return err
		}
		fmt.Printf("Contract saved: %s (%s, %s from %s)\n", saved.ID, saved.EmployeeID, saved.Type, saved.StartDate)
		return nil
	},
}

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListContracts(context.Background(), contractCompany, contractEmployee)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No contracts found.")
			return nil
		}
		fmt.Printf("%-36s %-16s %-20s %-10s %-10s %-10s %16s\n", "ID", "EMPLOYEE", "TYPE", "START", "END", "STATUS", "SALARY")
		for _, c := range list {
			fmt.Printf("%-36s %-16s %-20s %-10s %-10s %-10s %16s\n", c.ID, truncate(c.EmployeeID, 16), c.Type,
				c.StartDate, c.EndDate, c.Status, money.Format(c.Salary))
		}
		return nil
	},
}

func init() {
	contractSaveCmd.Flags().StringVarP(&contractFile, "file", "f", "", "JSON contract")
	contractSaveCmd.MarkFlagRequired("file")
	contractListCmd.Flags().StringVar(&contractCompany, "company", "", "Filter by company ID")
	contractListCmd.Flags().StringVar(&contractEmployee, "employee", "", "Filter by employee ID")

	contractCmd.AddCommand(contractSaveCmd)
	contractCmd.AddCommand(contractListCmd)
	rootCmd.AddCommand(contractCmd)
}
