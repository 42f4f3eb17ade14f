package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qiita-stats/qiistat/internal/collect"
	"github.com/qiita-stats/qiistat/internal/config"
	"github.com/qiita-stats/qiistat/internal/distribution"
	"github.com/qiita-stats/qiistat/internal/output"
	"github.com/qiita-stats/qiistat/internal/qiita"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Collect articles and write reaction distributions",
	Long: `Collect a random sample of articles matching a date range (and
optionally a user), aggregate their like, stock, and combined reaction
counts into frequency distributions, and save them as CSV.

Examples:
  qiistat count                                    # Site-wide, default range
  qiistat count --start-date 2024-01-01 --end-date 2024-12-31
  qiistat count --user alice --output alice.csv
  qiistat count --sample-size 500`,
	RunE: runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)

	countCmd.Flags().String("start-date", "", "start of the date range (YYYY-MM-DD)")
	countCmd.Flags().String("end-date", "", "end of the date range (YYYY-MM-DD)")
	countCmd.Flags().String("user", "", "restrict to one user's articles")
	countCmd.Flags().Int("sample-size", 0, "number of articles to sample")
	countCmd.Flags().StringP("output", "o", "counts.csv", "output CSV file")
}

func runCount(cmd *cobra.Command, args []string) error {
	client, err := apiClient()
	if err != nil {
		return err
	}

	startDate, _ := cmd.Flags().GetString("start-date")
	endDate, _ := cmd.Flags().GetString("end-date")
	user, _ := cmd.Flags().GetString("user")
	sampleSize, _ := cmd.Flags().GetInt("sample-size")
	outputFile, _ := cmd.Flags().GetString("output")

	if startDate == "" {
		startDate = cfg.Defaults.StartDate
	}
	if endDate == "" {
		endDate = cfg.Defaults.EndDate
	}
	if sampleSize == 0 {
		sampleSize = cfg.Defaults.SampleSize
	}
	if err := validateCountFlags(startDate, endDate, sampleSize); err != nil {
		return err
	}

	printer := newPrinter()

	opts := countOptions{
		StartDate:  startDate,
		EndDate:    endDate,
		UserID:     user,
		SampleSize: sampleSize,
		OutputFile: outputFile,
	}
	if err := countReactions(cmd.Context(), client, opts, printer); err != nil {
		return err
	}

	printer.PrintHints("count")
	return nil
}

func validateCountFlags(startDate, endDate string, sampleSize int) error {
	if err := config.ValidateDate(startDate); err != nil {
		return &output.CLIError{
			Summary:  fmt.Sprintf("invalid start date: %v", err),
			ExitCode: output.ExitUsageError,
		}
	}
	if err := config.ValidateDate(endDate); err != nil {
		return &output.CLIError{
			Summary:  fmt.Sprintf("invalid end date: %v", err),
			ExitCode: output.ExitUsageError,
		}
	}
	if sampleSize <= 0 {
		return &output.CLIError{
			Summary:  fmt.Sprintf("sample size must be positive, got %d", sampleSize),
			ExitCode: output.ExitUsageError,
		}
	}
	return nil
}

// countOptions are the parameters of one collection run.
type countOptions struct {
	StartDate  string
	EndDate    string
	UserID     string
	SampleSize int
	OutputFile string
}

// countReactions runs the collection pipeline: bound the available
// pages, pick which to fetch, collect the sample, aggregate, and save
// the distributions. Shared by the count and run commands.
func countReactions(ctx context.Context, client *qiita.Client, opts countOptions, printer *output.Printer) error {
	query := qiita.CreateQuery(opts.StartDate, opts.EndDate, opts.UserID)
	printer.Info("Query: %s", query)

	collector := collect.NewCollector(client, nil, logger)

	lastPage := collector.FindLastValidPage(ctx, query)
	if lastPage == 0 {
		return &output.CLIError{
			Summary:    "no articles found in the given range",
			Detail:     fmt.Sprintf("query %q matched nothing", query),
			Suggestion: "Widen the date range or drop the user filter",
			ExitCode:   output.ExitGeneral,
		}
	}

	pages := collector.SelectPages(lastPage, opts.SampleSize)
	printer.Info("Fetching %d of %d available pages: %v", len(pages), lastPage, pages)

	articles, err := collector.Collect(ctx, query, opts.SampleSize, pages)
	if err != nil {
		return &output.CLIError{
			Summary:    err.Error(),
			Suggestion: "Widen the date range or drop the user filter",
			ExitCode:   output.ExitGeneral,
		}
	}

	counts := distribution.Aggregate(articles)
	if err := counts.WriteCSV(opts.OutputFile); err != nil {
		return fmt.Errorf("saving distributions: %w", err)
	}

	printer.Success("wrote %s (%d articles)", opts.OutputFile, len(articles))
	return nil
}
