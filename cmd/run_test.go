package cmd

import (
	"errors"
	"testing"

	"github.com/qiita-stats/qiistat/internal/output"
)

func TestRun_MissingToken(t *testing.T) {
	setupCmdTest(t)

	rootCmd.SetArgs([]string{"run"})

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
	if cliErr.Suggestion == "" {
		t.Error("missing-token error should carry a suggestion")
	}
}
