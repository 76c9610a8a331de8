package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/feedback/internal/data/db"
)

const (
	busyAttempts = 4
	busyWait     = 25 * time.Millisecond
)

var corruptionMessages = []string{
	"database disk image is malformed",
	"file is not a database",
	"database corruption",
}

func sqliteCode(err error) (int, bool) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

// IsBusyError reports whether err is SQLITE_BUSY or SQLITE_LOCKED.
func IsBusyError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && (code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED)
}

// IsCorruptionError reports whether err means the database file is unusable.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}

	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN:
			return true
		}
	}

	msg := err.Error()
	for _, m := range corruptionMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports whether err is sql.ErrNoRows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// retryBusy runs fn until it succeeds, fails with a non-busy error, or the
// attempts run out. The busy_timeout pragma covers most contention; this
// catches the writes that still lose the lock while the scheduler loop runs
// beside a CLI command.
func retryBusy(ctx context.Context, fn func() error) error {
	wait := busyWait
	var err error
	for range busyAttempts {
		if err = fn(); !IsBusyError(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

// RecoverFromCorruption moves the database file and its WAL and SHM
// companions aside so the next Open starts from an empty schema. It returns
// the backup path, or "" when there was no database file.
func RecoverFromCorruption(dataDir string) (string, error) {
	dbPath := filepath.Join(dataDir, db.FileName)
	backup := fmt.Sprintf("%s.corrupt.%s", dbPath, time.Now().Format("20060102-150405"))

	moved := ""
	for _, suffix := range []string{"", "-wal", "-shm"} {
		src := dbPath + suffix
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}

		if err := os.Rename(src, backup+suffix); err != nil {
			if suffix == "" {
				return "", fmt.Errorf("failed to back up corrupted database: %w", err)
			}
			// A stale WAL or SHM left next to a fresh database makes sqlite
			// fail again, so drop it when it cannot be moved.
			if rmErr := os.Remove(src); rmErr != nil {
				return "", fmt.Errorf("failed to back up or remove %s: %w", filepath.Base(src), err)
			}
			continue
		}

		if suffix == "" {
			moved = backup
		}
	}

	return moved, nil
}
