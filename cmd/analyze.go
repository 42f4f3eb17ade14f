package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qiita-stats/qiistat/internal/distribution"
	"github.com/qiita-stats/qiistat/internal/output"
	"github.com/qiita-stats/qiistat/internal/stats"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute statistics over a saved distribution",
	Long: `Load a distributions CSV written by 'qiistat count' and compute
descriptive statistics over one of its columns: article count, mean,
median, the top-10% slice, and the share of articles at or above each
requested threshold.

Examples:
  qiistat analyze --file counts.csv
  qiistat analyze --file counts.csv --column likes
  qiistat analyze --file counts.csv --thresholds 1,5,10 --output stats.json
  qiistat analyze --file counts.csv --json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("file", "f", "", "distributions CSV to analyze")
	analyzeCmd.Flags().String("column", "reactions", "distribution column (likes|stocks|reactions)")
	analyzeCmd.Flags().IntSlice("thresholds", nil, "threshold values for ratio reporting")
	analyzeCmd.Flags().StringP("output", "o", "", "write the statistics record to this JSON file")
	analyzeCmd.Flags().Bool("json", false, "print the statistics record as JSON")
	_ = analyzeCmd.MarkFlagRequired("file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	column, _ := cmd.Flags().GetString("column")
	thresholds, _ := cmd.Flags().GetIntSlice("thresholds")
	outputFile, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if len(thresholds) == 0 {
		thresholds = cfg.Defaults.Thresholds
	}

	printer := newPrinter()

	res, err := analyzeFile(file, column, thresholds)
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := res.WriteJSON(outputFile); err != nil {
			return fmt.Errorf("saving statistics: %w", err)
		}
		printer.Success("wrote %s", outputFile)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printStats(printer, file, column, thresholds, res)
	printer.PrintHints("analyze")
	return nil
}

// analyzeFile loads one distribution column from a CSV and computes
// its statistics. Shared by the analyze and run commands.
func analyzeFile(path, column string, thresholds []int) (*stats.Result, error) {
	counts, err := distribution.ReadCSV(path)
	if err != nil {
		return nil, &output.CLIError{
			Summary:  fmt.Sprintf("cannot load distributions: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	dist, err := counts.Column(column)
	if err != nil {
		return nil, &output.CLIError{
			Summary:  err.Error(),
			ExitCode: output.ExitUsageError,
		}
	}

	res, err := stats.FromDistribution(dist, thresholds)
	if err != nil {
		return nil, &output.CLIError{
			Summary:  fmt.Sprintf("cannot analyze %s: %v", path, err),
			Detail:   fmt.Sprintf("the %s column has no entries", column),
			ExitCode: output.ExitGeneral,
		}
	}
	return res, nil
}

// printStats renders one statistics record as a table.
func printStats(printer *output.Printer, source, column string, thresholds []int, res *stats.Result) {
	printer.Header(fmt.Sprintf("Statistics for %s (%s)", source, column))

	table := output.NewQuietTable([]string{"METRIC", "VALUE"}, printer.IsQuiet())
	table.AddRow([]string{"Total articles", strconv.Itoa(res.TotalArticles)})
	table.AddRow([]string{"Mean", fmt.Sprintf("%.2f", res.Mean)})
	table.AddRow([]string{"Median", fmt.Sprintf("%.2f", res.Median)})
	table.AddRow([]string{"Top 10% threshold", fmt.Sprintf("%.2f", res.Top10Threshold)})
	table.AddRow([]string{"Top 10% mean", fmt.Sprintf("%.2f", res.Top10Mean)})
	table.AddRow([]string{"Top 10% median", fmt.Sprintf("%.2f", res.Top10Median)})
	table.AddRow([]string{"Top 10% count", strconv.Itoa(res.Top10Count)})
	for _, n := range thresholds {
		table.AddRow([]string{
			fmt.Sprintf("Articles with value >= %d", n),
			fmt.Sprintf("%.2f%%", res.NMoreOrRatio[n]),
		})
	}
	table.Render()
}
