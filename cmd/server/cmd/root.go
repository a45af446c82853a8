package cmd

import (
	"fmt"
	"os"

	"github.com/RafexStrike/eventment-server/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
)

// NewRootCommand builds the CLI. Running it without a subcommand serves HTTP.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Eventment server - community event backend",
		Long: `Eventment server is the backend for the Eventment community events app.

It stores events and join records in MongoDB, verifies Firebase ID tokens on
owner routes, and answers the browser frontend over a CORS-restricted JSON API.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), serveOptions{})
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (optional, env vars override it)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	root.AddCommand(
		newServeCommand(),
		newVersionCommand(),
		newHealthcheckCommand(),
		newIndexesCommand(),
		newTokenCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig applies --config and the logging flags on top of the environment.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}
