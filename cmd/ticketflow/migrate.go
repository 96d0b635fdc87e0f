package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lborres/ticketflow/config"
	"github.com/lborres/ticketflow/pkg/logger"
)

// migrateCmd creates the key/value table of the configured backend.
// Opening a sqlite or postgres backend applies its schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the storage schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		l := logger.New(cfg.Env)

		_, closeStorage, err := openStorage(cmd.Context(), cfg.Storage, l)
		if err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
		closeStorage()

		l.Info().Str("backend", cfg.Storage.Backend).Msg("storage ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
