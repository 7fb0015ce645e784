package cmd

import (
	"github.com/spf13/cobra"

	"github.com/simonvc/pgcledger/internal/server"
	"github.com/simonvc/pgcledger/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	// The API logs requests at the configured level.
	Annotations: map[string]string{annotationServer: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}
		st, err := store.Open(cfg.Server.DB)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(st, cfg, logger.Named("server"))
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
