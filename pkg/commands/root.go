// Package commands implements the CLI command structure using Cobra.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/tietlabs/thapargpt/pkg/config"
	"github.com/tietlabs/thapargpt/pkg/logger"
)

var (
	logLevel string

	// Loaded configuration
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "thapargpt",
	Short: "ThaparGPT - multilingual campus Q&A assistant",
	Long: `ThaparGPT answers questions about Thapar Institute in the user's own
language, grounding campus-related answers in an indexed knowledge base.

Use it interactively with 'thapargpt chat', as an HTTP service with
'thapargpt serve', or load knowledge files with 'thapargpt ingest'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger.SetLevel(cfg.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
