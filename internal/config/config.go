// Package config provides environment-driven configuration for the
// pipeline. Values load from environment variables with defaults and are
// validated up front so a misconfigured run fails before touching data.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lamkw/datapipe/internal/core"
)

// Config holds all pipeline configuration.
type Config struct {
	Data     DataConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// DataConfig holds the file-system layout for raw, intermediate, and
// export files. Unset stage directories derive from Dir.
type DataConfig struct {
	// Dir is the base data directory (default: data)
	Dir string `env:"DATA_DIR" default:"data"`

	// RawDir overrides the raw-input directory (default: Dir/raw)
	RawDir string `env:"DATA_RAW_DIR"`

	// CleanedDir overrides the cleaned-output directory (default: Dir/cleaned)
	CleanedDir string `env:"DATA_CLEANED_DIR"`

	// FormattedDir overrides the formatted-output directory (default: Dir/formatted)
	FormattedDir string `env:"DATA_FORMATTED_DIR"`

	// ExportsDir overrides the export directory (default: Dir/exports)
	ExportsDir string `env:"DATA_EXPORTS_DIR"`
}

// DatabaseConfig holds connection settings for the record store. The URL
// is only required by commands that touch the store (import, export,
// reset); clean and format run without one.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum pool size (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum pool size (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the idle timeout before a connection closes (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Dirs resolves the stage directory layout.
func (c *DataConfig) Dirs() core.Dirs {
	return core.Dirs{
		Raw:       orDefault(c.RawDir, filepath.Join(c.Dir, "raw")),
		Cleaned:   orDefault(c.CleanedDir, filepath.Join(c.Dir, "cleaned")),
		Formatted: orDefault(c.FormattedDir, filepath.Join(c.Dir, "formatted")),
		Exports:   orDefault(c.ExportsDir, filepath.Join(c.Dir, "exports")),
	}
}

// RequireURL errors when no database URL is configured. Store-touching
// commands call this instead of making the URL globally required.
func (c *DatabaseConfig) RequireURL() error {
	if c.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for this command")
	}
	return nil
}

// Validate checks the configuration, aggregating every failure.
func (c *Config) Validate() error {
	var errs []string

	if c.Data.Dir == "" && (c.Data.RawDir == "" || c.Data.CleanedDir == "" ||
		c.Data.FormattedDir == "" || c.Data.ExportsDir == "") {
		errs = append(errs, "DATA_DIR is required unless every stage directory is set")
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a loggable representation with the database URL masked.
func (c *Config) String() string {
	url := "[unset]"
	if c.Database.URL != "" {
		url = "[MASKED]"
	}
	return fmt.Sprintf("Config{Data: {Dir: %q}, Database: {URL: %s, MaxConns: %d, MinConns: %d}, Logging: {Level: %q, Format: %q}}",
		c.Data.Dir, url, c.Database.MaxConns, c.Database.MinConns,
		c.Logging.Level, c.Logging.Format)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
