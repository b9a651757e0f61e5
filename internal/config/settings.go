package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings are the CLI defaults read from an optional settings file and CANTONTAX_* env vars
type Settings struct {
	TaxYear int             `mapstructure:"tax_year"`
	Format  string          `mapstructure:"format"`
	Logging LoggingSettings `mapstructure:"logging"`
}

// LoggingSettings controls the zap logger built by the CLI
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DefaultTaxYear = 2025
	DefaultFormat  = "console"
)

// LoadSettings reads settings from configPath (may be empty) and the environment.
// Environment variables take precedence over the file, e.g. CANTONTAX_TAX_YEAR or
// CANTONTAX_LOGGING_LEVEL.
func LoadSettings(configPath string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("cantontax")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("tax_year", DefaultTaxYear)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file %s: %w", configPath, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks the settings values
func (s *Settings) Validate() error {
	if s.TaxYear <= 0 {
		return fmt.Errorf("tax year must be positive, got %d", s.TaxYear)
	}
	switch s.Format {
	case "console", "verbose", "json", "yaml", "csv", "html":
	default:
		return fmt.Errorf("invalid output format %q: must be one of console, verbose, json, yaml, csv, html", s.Format)
	}
	switch s.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be console or json", s.Logging.Format)
	}
	return nil
}
