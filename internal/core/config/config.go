// Package config handles configuration loading and validation for feedback.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/feedback/internal/core/styles"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "FEEDBACK_"

// Config holds the application configuration.
type Config struct {
	Database  DatabaseConfig `yaml:"database" envPrefix:"DB_"`
	Reminders ReminderConfig `yaml:"reminders" envPrefix:"REMINDERS_"`
	// Courses limits `ls` and the scheduler to these courses when non-empty.
	Courses []string `yaml:"courses" env:"COURSES" envSeparator:","`
	// Theme names the color palette used for CLI output.
	Theme   string `yaml:"theme" env:"THEME"`
	DataDir string `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig tunes the sqlite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	BusyTimeout  int `yaml:"busy_timeout" env:"BUSY_TIMEOUT"` // milliseconds
}

// ReminderConfig controls the notification scheduler.
type ReminderConfig struct {
	// ClosingHours is how many hours before End the closing reminder goes out.
	ClosingHours int           `yaml:"closing_hours" env:"CLOSING_HOURS"`
	Interval     time.Duration `yaml:"interval" env:"INTERVAL"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Reminders: ReminderConfig{
			ClosingHours: 24,
			Interval:     time.Hour,
		},
		Theme: styles.DefaultTheme,
	}
}

// Load reads configuration from the given path, applies FEEDBACK_*
// environment overrides and sets the data directory. A missing or empty
// configPath yields the defaults.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Reminders.ClosingHours == 0 {
		c.Reminders.ClosingHours = defaults.Reminders.ClosingHours
	}
	if c.Reminders.Interval == 0 {
		c.Reminders.Interval = defaults.Reminders.Interval
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

// Tracks reports whether courseID is within the configured course filter.
func (c *Config) Tracks(courseID string) bool {
	if len(c.Courses) == 0 {
		return true
	}
	for _, id := range c.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}
