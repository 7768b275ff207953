// Package cli implements the salesd command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "salesd",
	Short: "Sales revenue ingestion and analytics",
	Long: `salesd ingests sales CSV exports into a SQL store and serves
revenue aggregations over HTTP.

The storage backend (sqlite, postgres, mssql) and all tunables come from a
YAML config file; with no config the binary runs against a local SQLite file.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"YAML config path (empty uses built-in defaults)")
}
