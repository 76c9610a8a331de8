package commands

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/colonyops/feedback/internal/core/config"
	"github.com/colonyops/feedback/internal/core/session"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// xdgPath joins elem under the directory named by the env XDG variable, or
// under fallback inside the home directory when it is unset.
func xdgPath(env string, fallback []string, elem ...string) string {
	base := os.Getenv(env)
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	return filepath.Join(append([]string{base}, elem...)...)
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/feedback/config.yaml.
func DefaultConfigPath() string {
	return xdgPath("XDG_CONFIG_HOME", []string{".config"}, "feedback", "config.yaml")
}

// DefaultDataDir returns $XDG_DATA_HOME/feedback, where the database lives.
func DefaultDataDir() string {
	return xdgPath("XDG_DATA_HOME", []string{".local", "share"}, "feedback")
}

// DefaultLogFile returns the log path under the state directory. macOS uses
// ~/Library/Logs unless XDG_STATE_HOME is set.
func DefaultLogFile() string {
	if runtime.GOOS == "darwin" && os.Getenv("XDG_STATE_HOME") == "" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Logs", "feedback", "feedback.log")
	}
	return xdgPath("XDG_STATE_HOME", []string{".local", "state"}, "feedback", "feedback.log")
}

// SessionID converts a command argument to a session ID. Both the stored
// "name%course" form and the displayed "name/course" form are accepted.
// Course IDs never contain a slash, so the last one separates the parts.
func SessionID(arg string) string {
	if strings.Contains(arg, "%") {
		return arg
	}
	if i := strings.LastIndex(arg, "/"); i > 0 {
		return session.MakeID(arg[:i], arg[i+1:])
	}
	return arg
}
