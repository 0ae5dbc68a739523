package cli

import (
	"fmt"

	"smarthub/internal/config"
	"smarthub/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose   bool
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "smarthub",
	Short: "Smart-hub backend for fan/light actuation",
	Long: `smarthub stores sensor samples, user preferences, profiles and tanks, and
decides fan and light states from each incoming sample.

Running without a subcommand starts the HTTP server (same as "smarthub serve").`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format override: json or console")
}

// loadRuntime loads config and builds the logger, applying flag overrides.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "smarthub")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}
