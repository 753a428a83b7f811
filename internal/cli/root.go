// Package cli implements the keepstyle command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javajack/keepstyle/internal/config"
)

var version = "dev"

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "keepstyle",
	Short: "Fill report templates and restore spreadsheet formatting",
	Long: `keepstyle keeps document and workbook formatting intact while content changes.

It populates the numbered sections of an end-of-day report template from a
YAML description, and restores the formatting of a reference workbook onto an
edited copy, cell by cell, including rows appended after the reference range.

Configuration file: ~/.keepstyle/config.yaml`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default ~/.keepstyle/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "console log level: none, normal or debug")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads the configuration and prepares the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return err
	}
	if cfg, err = loader.Load(); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if logLevel != "" {
		switch logLevel {
		case "none", "normal", "debug":
			cfg.Logging.ConsoleLogger.Level = logLevel
		default:
			return fmt.Errorf("invalid --log-level %q (must be none, normal or debug)", logLevel)
		}
	}
	if logger, err = cfg.Logging.Prepare(); err != nil {
		return err
	}
	return nil
}

func newLoader() (*config.Loader, error) {
	if configPath != "" {
		return config.NewLoaderWithPath(configPath), nil
	}
	return config.NewLoader()
}
