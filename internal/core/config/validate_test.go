package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field)
	}
	return fields
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		fields []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:   "empty data dir",
			mutate: func(c *Config) { c.DataDir = "" },
			fields: []string{"data_dir"},
		},
		{
			name:   "no connections",
			mutate: func(c *Config) { c.Database.MaxOpenConns = 0; c.Database.MaxIdleConns = 0 },
			fields: []string{"database.max_open_conns"},
		},
		{
			name:   "idle above open",
			mutate: func(c *Config) { c.Database.MaxIdleConns = 20 },
			fields: []string{"database.max_idle_conns"},
		},
		{
			name:   "negative busy timeout",
			mutate: func(c *Config) { c.Database.BusyTimeout = -1 },
			fields: []string{"database.busy_timeout"},
		},
		{
			name: "reminder settings",
			mutate: func(c *Config) {
				c.Reminders.ClosingHours = 0
				c.Reminders.Interval = time.Second
			},
			fields: []string{"reminders.closing_hours", "reminders.interval"},
		},
		{
			name:   "unknown theme",
			mutate: func(c *Config) { c.Theme = "solarized" },
			fields: []string{"theme"},
		},
		{
			name:   "blank course",
			mutate: func(c *Config) { c.Courses = []string{"CS101", ""} },
			fields: []string{"courses[1]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.fields, fieldsOf(t, err))
		})
	}
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, fieldsOf(t, err), "data_dir")
}

func TestValidateDeep_DataDirMissing(t *testing.T) {
	cfg := validConfig(t)
	cfg.DataDir = filepath.Join(t.TempDir(), "later")

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, fieldsOf(t, err), "config_file")
}
