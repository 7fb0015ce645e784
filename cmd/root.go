package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/config"
	"github.com/simonvc/pgcledger/internal/logging"
)

var (
	flagConfig   string
	flagServer   string
	flagDB       string
	flagLogLevel string
)

// cfg and logger are set before any command runs.
var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pgcledger",
	Short: "Angolan general ledger on the PGC chart of accounts",
	Long: "A double-entry ledger backed by SQLite that follows the Angolan Plano Geral de Contabilidade. " +
		"It classifies sales, purchases and payroll into journal entries, computes IRT, INSS and IVA, " +
		"and produces the balancete and account extracts.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return err
		}
		if cmd.Flags().Changed("server") {
			cfg.Server.URL = flagServer
		}
		if cmd.Flags().Changed("db") {
			cfg.Server.DB = flagDB
		}
		cfg.Server.LogLevel = commandLogLevel(cmd, cfg.Server.LogLevel)
		if err := cfg.Validate(); err != nil {
			return err
		}
		if logger, err = logging.New(cfg.Server.LogLevel, cfg.Server.LogFormat); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "pgcledger.yaml", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8080", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "pgcledger.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error); serve uses the configured level unless set")
}

// commandLogLevel picks the level for cmd: the --log-level flag when set,
// the configured server level for commands that run the API, warn for the
// rest of the CLI.
func commandLogLevel(cmd *cobra.Command, configured string) string {
	if cmd.Flags().Changed("log-level") {
		return flagLogLevel
	}
	if cmd.Annotations[annotationServer] == "true" {
		return configured
	}
	return "warn"
}

const annotationServer = "server"

func newClient() *client.Client {
	return client.New(cfg.Server.URL)
}

func Execute() error {
	return rootCmd.Execute()
}
