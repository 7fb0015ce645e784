package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/ledger"
)

var accountCmd = &cobra.Command{
	Use:     "account",
	Aliases: []string{"conta"},
	Short:   "Manage the PGC chart of accounts",
}

// account create
var (
	acctCreateCode        string
	acctCreateDescription string
	acctCreateType        string
	acctCreateNature      string
)

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account under an existing parent",
	RunE: func(cmd *cobra.Command, args []string) error {
		acct := &ledger.Account{
			Code:        acctCreateCode,
			Description: acctCreateDescription,
			Type:        ledger.AccountType(acctCreateType),
			Nature:      ledger.Nature(acctCreateNature),
		}

		created, err := newClient().CreateAccount(context.Background(), acct)
		if err != nil {
			return err
		}

		fmt.Printf("Account created: %s %s [%s, %s]\n",
			created.Code, created.Description, created.Type, created.Nature)
		return nil
	},
}

// account list
var (
	acctListPrefix string
	acctListType   string
)

func printAccounts(accounts []ledger.Account) {
	if len(accounts) == 0 {
		fmt.Println("No accounts found.")
		return
	}
	fmt.Printf("%-14s %-44s %-9s %s\n", "CODE", "DESCRIPTION", "TYPE", "NATURE")
	fmt.Printf("%-14s %-44s %-9s %s\n", "----", "-----------", "----", "------")
	for _, a := range accounts {
		fmt.Printf("%-14s %-44s %-9s %s\n", a.Code, truncate(a.Description, 42), a.Type, a.Nature)
	}
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := newClient().ListAccounts(context.Background(), acctListPrefix, acctListType)
		if err != nil {
			return err
		}
		printAccounts(accounts)
		return nil
	},
}

var acctSearchLimit int

var accountSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Find accounts by code prefix or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := newClient().SearchAccounts(context.Background(), args[0], acctSearchLimit)
		if err != nil {
			return err
		}
		printAccounts(accounts)
		return nil
	},
}

var accountChildrenCmd = &cobra.Command{
	Use:   "children [code]",
	Short: "List the direct children of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := newClient().Children(context.Background(), args[0])
		if err != nil {
			return err
		}
		printAccounts(accounts)
		return nil
	},
}

// account get
var accountGetCmd = &cobra.Command{
	Use:   "get [code]",
	Short: "Get account details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := newClient().GetAccount(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Code:        %s\n", acct.Code)
		fmt.Printf("Description: %s\n", acct.Description)
		fmt.Printf("Type:        %s\n", acct.Type)
		fmt.Printf("Nature:      %s\n", acct.Nature)
		fmt.Printf("Parent:      %s\n", acct.ParentCode)
		fmt.Printf("Created:     %s\n", acct.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete [code]",
	Short: "Delete an account without children or movements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteAccount(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Account %s deleted.\n", args[0])
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}

func init() {
	accountCreateCmd.Flags().StringVar(&acctCreateCode, "code", "", "PGC code (e.g. 43.1.1)")
	accountCreateCmd.Flags().StringVar(&acctCreateDescription, "description", "", "Account description")
	accountCreateCmd.Flags().StringVar(&acctCreateType, "type", "", "CLASSE, GRUPO, SUBGRUPO, CONTA or SUBCONTA (derived from the code when empty)")
	accountCreateCmd.Flags().StringVar(&acctCreateNature, "nature", "", "DEBITO, CREDITO or AMBOS (derived from the class when empty)")
	accountCreateCmd.MarkFlagRequired("code")
	accountCreateCmd.MarkFlagRequired("description")

	accountListCmd.Flags().StringVar(&acctListPrefix, "prefix", "", "Filter by code prefix")
	accountListCmd.Flags().StringVar(&acctListType, "type", "", "Filter by account type")

	accountSearchCmd.Flags().IntVar(&acctSearchLimit, "limit", 10, "Maximum results")

	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountSearchCmd)
	accountCmd.AddCommand(accountChildrenCmd)
	accountCmd.AddCommand(accountGetCmd)
	accountCmd.AddCommand(accountDeleteCmd)

	rootCmd.AddCommand(accountCmd)
}
