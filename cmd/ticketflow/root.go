package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ticketflow",
	Short: "Ticket tracking host",
	Long: `ticketflow hosts the ticket tracker: sessions, tickets, activity log
and notifications over HTTP, persisted to sqlite, postgres, redis or memory.

Configuration is read from .env, the YAML file named by TICKETFLOW_CONFIG
and TICKETFLOW_* environment variables.`,
	SilenceUsage: true,
}
