// Package cmd contains all CLI commands for qiistat
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qiita-stats/qiistat/internal/config"
	"github.com/qiita-stats/qiistat/internal/output"
	"github.com/qiita-stats/qiistat/internal/qiita"
)

var (
	cfgFile   string
	verbose   bool
	quiet     bool
	colorFlag string
	cfg       *config.Config
	logger    *slog.Logger
	version   = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qiistat",
	Short: "Qiita engagement statistics CLI",
	Long: `qiistat collects articles through the Qiita search API, aggregates
their like and stock counts into frequency distributions, and computes
descriptive statistics over those distributions.

Example usage:
  qiistat count --start-date 2024-01-01 --end-date 2024-12-31
  qiistat count --user alice --sample-size 500 --output alice.csv
  qiistat analyze --file counts.csv --thresholds 1,2,3
  qiistat run                  # Full pipeline: site-wide + your account`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .qiistat.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "colorize output (auto|always|never)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output.color_mode", rootCmd.PersistentFlags().Lookup("color"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return &output.CLIError{
			Summary:  "configuration is invalid",
			Detail:   err.Error(),
			ExitCode: output.ExitConfigError,
		}
	}

	logLevel := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	logger.Debug("configuration loaded",
		"start_date", cfg.Defaults.StartDate,
		"end_date", cfg.Defaults.EndDate,
		"sample_size", cfg.Defaults.SampleSize,
		"output_dir", cfg.Defaults.OutputDir,
	)

	return nil
}

// newPrinter builds a Printer honoring the --color and --quiet flags
// and the configured color preference.
func newPrinter() *output.Printer {
	mode, err := output.ParseColorMode(colorFlag)
	if err != nil {
		mode = output.ColorAuto
	}
	return output.NewPrinterWithOptions(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: cfg.Output.Colors,
		Quiet:        quiet,
	})
}

// apiClient returns a Qiita client, or a configuration error when no
// token is available. The token is never defaulted.
func apiClient() (*qiita.Client, error) {
	if cfg.Qiita.Token == "" {
		return nil, &output.CLIError{
			Summary:    "QIITA_TOKEN is not set",
			Detail:     "the Qiita API requires a personal access token",
			Suggestion: "Export QIITA_TOKEN, add it to .env, or set qiita.token in .qiistat.yaml",
			ExitCode:   output.ExitConfigError,
		}
	}
	return qiita.NewClient(cfg.Qiita.Token, logger), nil
}
