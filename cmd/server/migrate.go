package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"appraisal/internal/app/server"
	"appraisal/internal/platform/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		_, _, closeStore, err := server.OpenStore(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		closeStore()
		slog.Info("schema up to date", "store", cfg.StoreDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
