package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fansite/forum/pkg/config"
	"github.com/fansite/forum/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "forum",
	Short: "Fan site discussion forum API",
	Long: `Serves the topic and comment API of the fan site forum.

Without a subcommand the HTTP server is started. Configuration is read from
FORUM_* environment variables and an optional config.yaml.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and installs the global logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logging.GetLogger(), nil
}
