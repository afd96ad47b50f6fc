// Package cli implements the habitsync command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/habitsync/internal/config"
	"github.com/custodia-labs/habitsync/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "habitsync",
	Short: "Mirror habit logs into Google Sheets",
	Long: `habitsync connects a habit tracker to each user's Google Sheet.

It serves the HTTP API the web app calls, an MCP server for AI assistants,
and a few commands for inspecting stored connections.

Configuration comes from environment variables, optionally layered over
~/.habitsync/config.toml.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded
	logger.Debug("config loaded",
		"store_backend", cfg.Store.Backend,
		"store_strict", cfg.Store.Strict,
		"addr", cfg.Server.Addr,
	)
	return nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
