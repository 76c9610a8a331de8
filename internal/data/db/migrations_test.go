package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func tableExists(t *testing.T, conn *sql.DB, table string) bool {
	t.Helper()
	var n int
	err := conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestOpen_AppliesAllMigrations(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	migrations, err := loadMigrations()
	require.NoError(t, err)

	applied, err := database.AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, len(migrations))
	for i, m := range migrations {
		assert.Equal(t, m.Version, applied[i].Version)
		assert.Equal(t, m.Name, applied[i].Name)
		assert.False(t, applied[i].AppliedAt.IsZero())
	}

	version, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, version)

	for _, table := range []string{"sessions", "notification_state", "reminders", "responders"} {
		assert.True(t, tableExists(t, database.Conn(), table), "table %s", table)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := openTestDB(t)
	assert.NoError(t, migrateUp(context.Background(), database.Conn()))
}

func TestRollback(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	conn := database.Conn()

	_, err := conn.ExecContext(ctx, `
		INSERT INTO sessions (id, name, course_id, creator_email, instructions, created_at,
			visibility_kind, publish_kind, updated_at)
		VALUES ('Week 1%CS101', 'Week 1', 'CS101', 'prof@uni.edu', 'hi', 1, 'follow_opening', 'later', 1)`)
	require.NoError(t, err)

	before, err := database.SchemaVersion(ctx)
	require.NoError(t, err)

	require.NoError(t, database.Rollback(ctx, 1))

	after, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Less(t, after, before)
	assert.False(t, tableExists(t, conn, "responders"))

	var count int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count))
	assert.Equal(t, 1, count, "earlier tables keep their rows")

	require.NoError(t, migrateUp(ctx, conn))
	assert.True(t, tableExists(t, conn, "responders"))
}

func TestMigrateDown_InvalidSteps(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", filepath.Join(t.TempDir(), FileName))
	conn, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	assert.Error(t, MigrateDown(ctx, conn, 0))
	assert.Error(t, MigrateDown(ctx, conn, -1))
}

func TestMigrateDown_TooMany(t *testing.T) {
	database := openTestDB(t)

	migrations, err := loadMigrations()
	require.NoError(t, err)

	err = database.Rollback(context.Background(), len(migrations)+1)
	assert.ErrorContains(t, err, "only")
}

func TestSchemaVersion_Empty(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NoError(t, database.Rollback(ctx, len(migrations)))

	version, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		if i > 0 {
			assert.Greater(t, m.Version, migrations[i-1].Version)
		}
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpSQL, "migration %d up", m.Version)
		assert.NotEmpty(t, m.DownSQL, "migration %d down", m.Version)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename string
		version  int
		name     string
		dir      direction
		wantErr  bool
	}{
		{filename: "0001_sessions.up.sql", version: 1, name: "sessions", dir: up},
		{filename: "0002_notifications.down.sql", version: 2, name: "notifications", dir: down},
		{filename: "0100_late_fix.up.sql", version: 100, name: "late_fix", dir: up},
		{filename: "sessions.sql", wantErr: true},
		{filename: "0001_sessions.sql", wantErr: true},
		{filename: "0000_zero.up.sql", wantErr: true},
		{filename: "-1_negative.up.sql", wantErr: true},
		{filename: "abc_sessions.up.sql", wantErr: true},
		{filename: "0001_.up.sql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, dir, err := parseFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.dir, dir)
		})
	}
}
