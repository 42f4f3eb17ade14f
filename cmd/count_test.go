package cmd

import (
	"errors"
	"testing"

	"github.com/qiita-stats/qiistat/internal/output"
)

func TestCount_MissingToken(t *testing.T) {
	setupCmdTest(t)

	rootCmd.SetArgs([]string{"count"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error without a token, got nil")
	}

	var cliErr *output.CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected a CLIError, got %T: %v", err, err)
	}
	if cliErr.ExitCode != output.ExitConfigError {
		t.Errorf("ExitCode = %d, want %d", cliErr.ExitCode, output.ExitConfigError)
	}
}

func TestCount_InvalidStartDate(t *testing.T) {
	setupCmdTest(t)
	t.Setenv("QIITA_TOKEN", "test-token")

	rootCmd.SetArgs([]string{"count", "--start-date", "01/02/2024", "--end-date", "2024-12-31"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for malformed date, got nil")
	}

	var cliErr *output.CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected a CLIError, got %T: %v", err, err)
	}
	if cliErr.ExitCode != output.ExitUsageError {
		t.Errorf("ExitCode = %d, want %d", cliErr.ExitCode, output.ExitUsageError)
	}
}

func TestCount_InvalidSampleSize(t *testing.T) {
	setupCmdTest(t)
	t.Setenv("QIITA_TOKEN", "test-token")

	rootCmd.SetArgs([]string{"count", "--start-date", "2024-01-01", "--end-date", "2024-12-31", "--sample-size", "-5"})

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for negative sample size, got nil")
	}
}
