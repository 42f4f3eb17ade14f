package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	os.Unsetenv("QIITA_TOKEN")
	os.Unsetenv("QIISTAT_QIITA_TOKEN")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Defaults.StartDate != "1900-01-01" {
		t.Errorf("StartDate = %q, want 1900-01-01", cfg.Defaults.StartDate)
	}
	if cfg.Defaults.EndDate != "2099-12-31" {
		t.Errorf("EndDate = %q, want 2099-12-31", cfg.Defaults.EndDate)
	}
	if cfg.Defaults.SampleSize != 1000 {
		t.Errorf("SampleSize = %d, want 1000", cfg.Defaults.SampleSize)
	}
	if cfg.Defaults.OutputDir != "results" {
		t.Errorf("OutputDir = %q, want results", cfg.Defaults.OutputDir)
	}
	if len(cfg.Defaults.Thresholds) != 3 {
		t.Errorf("Thresholds = %v, want [1 2 3]", cfg.Defaults.Thresholds)
	}
	if cfg.Qiita.Token != "" {
		t.Errorf("Token should be empty without env or file, got %q", cfg.Qiita.Token)
	}
}

func TestLoad_TokenFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("QIITA_TOKEN", "env-token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Qiita.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", cfg.Qiita.Token)
	}
}

func TestLoad_TokenFromDotenv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	os.Unsetenv("QIITA_TOKEN")
	os.Unsetenv("QIISTAT_QIITA_TOKEN")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("QIITA_TOKEN=dotenv-token\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Qiita.Token != "dotenv-token" {
		t.Errorf("Token = %q, want dotenv-token", cfg.Qiita.Token)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
qiita:
  token: file-token
defaults:
  start_date: "2024-01-01"
  end_date: "2024-12-31"
  sample_size: 500
logging:
  level: debug
`
	path := filepath.Join(dir, ".qiistat.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Qiita.Token != "file-token" {
		t.Errorf("Token = %q, want file-token", cfg.Qiita.Token)
	}
	if cfg.Defaults.SampleSize != 500 {
		t.Errorf("SampleSize = %d, want 500", cfg.Defaults.SampleSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad start date", "defaults:\n  start_date: \"01/01/2024\"\n"},
		{"zero sample size", "defaults:\n  sample_size: 0\n"},
		{"negative threshold", "defaults:\n  thresholds: [0]\n"},
		{"bad log level", "logging:\n  level: trace\n"},
		{"bad log format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)

			path := filepath.Join(dir, ".qiistat.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("2024-02-29"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	for _, s := range []string{"2024-13-01", "24-01-01", "2024/01/01", "yesterday"} {
		if err := ValidateDate(s); err == nil {
			t.Errorf("invalid date %q accepted", s)
		}
	}
}
