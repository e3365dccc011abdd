// Package config provides configuration management for pantrysync.
// Configurations are loaded from TOML files with XDG-compliant paths.
package config

import (
	"errors"
	"fmt"
)

// Config holds the complete engine configuration.
type Config struct {
	Sync     SyncConfig     `toml:"sync"`
	Logging  LoggingConfig  `toml:"logging"`
	Database DatabaseConfig `toml:"database"`
}

// SyncConfig controls the consumption sync engine.
type SyncConfig struct {
	// RestockQuantity is the fixed quantity placed on auto-added shopping
	// entries. The engine does not estimate restock sizes.
	RestockQuantity float64 `toml:"restock_quantity"`

	// AllowUnitPassthrough permits deduction when ingredient and pantry
	// units are textually identical but outside the known mass/volume
	// families (counts, empty units). When false such ingredients are
	// skipped instead.
	AllowUnitPassthrough bool `toml:"allow_unit_passthrough"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level LogLevel `toml:"level"`
	File  string   `toml:"file"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DatabaseConfig controls SQLite database settings.
type DatabaseConfig struct {
	Path                string `toml:"path"`
	BackupIntervalHours int    `toml:"backup_interval_hours"`
	BackupRetentionDays int    `toml:"backup_retention_days"`
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Sync.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sync: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the sync configuration is valid.
func (s *SyncConfig) Validate() error {
	if s.RestockQuantity <= 0 {
		return errors.New("restock_quantity must be positive")
	}
	return nil
}

// Validate checks that the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}

	if !validLevels[l.Level] && l.Level != "" {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	return nil
}

// Validate checks that the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	var errs []error

	if d.Path == "" {
		errs = append(errs, errors.New("path is required"))
	}

	if d.BackupIntervalHours < 0 {
		errs = append(errs, errors.New("backup_interval_hours must be non-negative"))
	}

	if d.BackupRetentionDays < 0 {
		errs = append(errs, errors.New("backup_retention_days must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			RestockQuantity:      1.0,
			AllowUnitPassthrough: true,
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
			File:  "logs/pantrysync.log",
		},
		Database: DatabaseConfig{
			Path:                "pantry.db",
			BackupIntervalHours: 24,
			BackupRetentionDays: 30,
		},
	}
}
