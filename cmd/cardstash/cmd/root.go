// Package cmd implements the CLI commands for the cardstash server.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cardstash",
	Short: "Track a sports-card collection with marketplace price estimates",
	Long: "An API server that stores card photos in object storage, persists card " +
		"records in PostgreSQL, and estimates card values from active eBay Canada listings.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Best effort; secrets usually arrive via a local .env in development.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
