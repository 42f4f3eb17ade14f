// Package config provides Viper-based configuration management for qiistat
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete qiistat configuration
type Config struct {
	Qiita    QiitaConfig    `mapstructure:"qiita"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Output   OutputConfig   `mapstructure:"output"`
}

// QiitaConfig contains API access settings
type QiitaConfig struct {
	Token string `mapstructure:"token"`
}

// DefaultsConfig contains default collection and analysis settings
type DefaultsConfig struct {
	StartDate  string `mapstructure:"start_date"`
	EndDate    string `mapstructure:"end_date"`
	SampleSize int    `mapstructure:"sample_size"`
	OutputDir  string `mapstructure:"output_dir"`
	Thresholds []int  `mapstructure:"thresholds"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// Load reads configuration from file and environment variables.
// Precedence: flags (bound by the caller) > environment > .env file >
// .qiistat.yaml > defaults. The token is never defaulted.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".qiistat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/qiistat")
	}

	// Environment variables
	v.SetEnvPrefix("QIISTAT")
	v.AutomaticEnv()
	_ = v.BindEnv("qiita.token", "QIISTAT_QIITA_TOKEN", "QIITA_TOKEN")

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// A local .env file may carry the token
	if v.GetString("qiita.token") == "" {
		if token := tokenFromDotenv(); token != "" {
			v.Set("qiita.token", token)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	// Widest possible date range: the query grammar always requires one
	v.SetDefault("defaults.start_date", "1900-01-01")
	v.SetDefault("defaults.end_date", "2099-12-31")
	v.SetDefault("defaults.sample_size", 1000)
	v.SetDefault("defaults.output_dir", "results")
	v.SetDefault("defaults.thresholds", []int{1, 2, 3})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.colors", true)
}

// tokenFromDotenv reads QIITA_TOKEN from a .env file in the working
// directory, if one exists.
func tokenFromDotenv() string {
	d := viper.New()
	d.SetConfigFile(".env")
	d.SetConfigType("dotenv")
	if err := d.ReadInConfig(); err != nil {
		return ""
	}
	return d.GetString("QIITA_TOKEN")
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	if err := validateDate(cfg.Defaults.StartDate); err != nil {
		return fmt.Errorf("invalid start_date: %w", err)
	}
	if err := validateDate(cfg.Defaults.EndDate); err != nil {
		return fmt.Errorf("invalid end_date: %w", err)
	}
	if cfg.Defaults.SampleSize <= 0 {
		return fmt.Errorf("sample_size must be positive, got %d", cfg.Defaults.SampleSize)
	}
	for _, n := range cfg.Defaults.Thresholds {
		if n < 1 {
			return fmt.Errorf("thresholds must be >= 1, got %d", n)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}

	return nil
}

// ValidateDate reports whether s is a YYYY-MM-DD date.
func ValidateDate(s string) error {
	return validateDate(s)
}

func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	return nil
}
