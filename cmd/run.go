package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/qiita-stats/qiistat/internal/output"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Full pipeline: collect and analyze, site-wide and per-user",
	Long: `Collect and analyze reaction distributions in one go. The site-wide
sample and one user's articles are each counted and analyzed, with the
CSV distributions and JSON statistics written to the output directory.

Without --user the account owning the access token is used. Without
--start-date the range opens at that user's oldest article; without
--end-date it closes today.

Examples:
  qiistat run                            # Your account + site-wide
  qiistat run --user alice
  qiistat run --sample-size 500 --output-dir results/2024`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("start-date", "", "start of the date range (default: user's oldest article)")
	runCmd.Flags().String("end-date", "", "end of the date range (default: today)")
	runCmd.Flags().String("user", "", "user to analyze (default: the authenticated user)")
	runCmd.Flags().Int("sample-size", 0, "number of articles to sample per run")
	runCmd.Flags().String("output-dir", "", "directory for result files")
}

func runRun(cmd *cobra.Command, args []string) error {
	client, err := apiClient()
	if err != nil {
		return err
	}

	startDate, _ := cmd.Flags().GetString("start-date")
	endDate, _ := cmd.Flags().GetString("end-date")
	user, _ := cmd.Flags().GetString("user")
	sampleSize, _ := cmd.Flags().GetInt("sample-size")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	if sampleSize == 0 {
		sampleSize = cfg.Defaults.SampleSize
	}
	if outputDir == "" {
		outputDir = cfg.Defaults.OutputDir
	}

	printer := newPrinter()
	ctx := cmd.Context()

	if user == "" {
		user, err = client.AuthenticatedUser(ctx)
		if err != nil {
			return &output.CLIError{
				Summary:    "cannot resolve the authenticated user",
				Detail:     err.Error(),
				Suggestion: "Check that the token is valid, or pass --user explicitly",
				ExitCode:   output.ExitAPIError,
			}
		}
		printer.Info("Authenticated user: %s", user)
	}

	if startDate == "" {
		startDate, err = client.OldestArticleDate(ctx, user)
		if err != nil {
			return &output.CLIError{
				Summary:    fmt.Sprintf("cannot determine the oldest article of %s", user),
				Detail:     err.Error(),
				Suggestion: "Pass --start-date explicitly",
				ExitCode:   output.ExitAPIError,
			}
		}
		printer.Info("Start date set to %s's oldest article: %s", user, startDate)
	}
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02")
	}
	if err := validateCountFlags(startDate, endDate, sampleSize); err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	runs := []struct {
		label  string
		userID string
		base   string
	}{
		{"site-wide", "", "all_users"},
		{user, user, user},
	}

	for _, r := range runs {
		printer.Header(fmt.Sprintf("Counting reactions (%s)", r.label))

		csvPath := filepath.Join(outputDir, r.base+"_reactions.csv")
		opts := countOptions{
			StartDate:  startDate,
			EndDate:    endDate,
			UserID:     r.userID,
			SampleSize: sampleSize,
			OutputFile: csvPath,
		}
		if err := countReactions(ctx, client, opts, printer); err != nil {
			return err
		}

		jsonPath := filepath.Join(outputDir, r.base+"_analysis_result.json")
		res, err := analyzeFile(csvPath, "reactions", cfg.Defaults.Thresholds)
		if err != nil {
			return err
		}
		if err := res.WriteJSON(jsonPath); err != nil {
			return fmt.Errorf("saving statistics: %w", err)
		}
		printStats(printer, csvPath, "reactions", cfg.Defaults.Thresholds, res)
		printer.Success("wrote %s", jsonPath)
	}

	printer.PrintHints("run")
	return nil
}
