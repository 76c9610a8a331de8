// Package logutils builds the process-wide zerolog logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Stderr as the file argument to New writes JSON lines to stderr instead of
// the human-readable console format.
const Stderr = "-"

// New returns a logger at level writing to file.
//
//   - "" writes colored, human-readable lines to stderr
//   - Stderr writes JSON lines to stderr
//   - any other value appends JSON lines to that path, creating its directory
//
// An empty level means info. The returned closer releases the file and is
// never nil.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return zerolog.Logger{}, closer, err
		}
	}

	w, closer, err := open(file)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), closer, nil
}

func open(file string) (io.Writer, func(), error) {
	noop := func() {}

	switch file {
	case "":
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, noop, nil
	case Stderr:
		return os.Stderr, noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, noop, fmt.Errorf("create logs dir: %w", err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
