package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qiita-stats/qiistat/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Display the current qiistat configuration.

Examples:
  qiistat config               # Show all config
  qiistat config --path        # Show config file path
  qiistat config --json        # Output as JSON`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("path", false, "show config file path")
	configCmd.Flags().Bool("json", false, "output as JSON")
}

func runConfig(cmd *cobra.Command, args []string) error {
	printer := newPrinter()

	showPath, _ := cmd.Flags().GetBool("path")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if showPath {
		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			printer.Info("No config file found (using defaults)")
		} else {
			printer.Info("Config file: %s", configFile)
		}
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(redacted())
	}

	printer.Header("Current Configuration")

	table := output.NewQuietTable([]string{"KEY", "VALUE"}, printer.IsQuiet())
	table.AddRow([]string{"qiita.token", redactToken(cfg.Qiita.Token)})
	table.AddRow([]string{"defaults.start_date", cfg.Defaults.StartDate})
	table.AddRow([]string{"defaults.end_date", cfg.Defaults.EndDate})
	table.AddRow([]string{"defaults.sample_size", fmt.Sprintf("%d", cfg.Defaults.SampleSize)})
	table.AddRow([]string{"defaults.output_dir", cfg.Defaults.OutputDir})
	table.AddRow([]string{"defaults.thresholds", fmt.Sprintf("%v", cfg.Defaults.Thresholds)})
	table.AddRow([]string{"logging.level", cfg.Logging.Level})
	table.AddRow([]string{"logging.format", cfg.Logging.Format})
	table.AddRow([]string{"output.colors", fmt.Sprintf("%v", cfg.Output.Colors)})
	table.Render()

	return nil
}

// redacted returns a copy of the config safe for display: the token
// never leaves the process in clear text.
func redacted() map[string]any {
	return map[string]any{
		"qiita": map[string]any{
			"token": redactToken(cfg.Qiita.Token),
		},
		"defaults": cfg.Defaults,
		"logging":  cfg.Logging,
		"output":   cfg.Output,
	}
}

func redactToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-4)
}
