package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/core/config"
	"github.com/colonyops/feedback/internal/data/db"
	"github.com/colonyops/feedback/internal/data/stores"
	"github.com/colonyops/feedback/internal/feedback"
	"github.com/colonyops/feedback/internal/reminder"
	"github.com/colonyops/feedback/pkg/iojson"
)

const sessionsYAML = `
sessions:
  - name: Week 1
    course_id: CS101
    creator_email: prof@uni.edu
    instructions: Tell us how it went
    created_at: 2024-01-01T00:00:00Z
    window:
      start: 2024-01-02T00:00:00Z
      end: 2024-01-09T00:00:00Z
      visible_from: follow_opening
      results_visible_from: later
  - name: Broken
    course_id: CS101
    creator_email: prof@uni.edu
    instructions: End before start
    created_at: 2024-01-01T00:00:00Z
    window:
      start: 2024-01-09T00:00:00Z
      end: 2024-01-02T00:00:00Z
      visible_from: follow_opening
      results_visible_from: later
`

func newTestApp(t *testing.T) (*feedback.App, *Flags) {
	t.Helper()

	dataDir := t.TempDir()
	cfg, err := config.Load("", dataDir)
	require.NoError(t, err)

	database, err := db.Open(dataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sessionStore := stores.NewSessionStore(database)
	notifyStore := stores.NewNotifyStore(database)
	scheduler := reminder.NewScheduler(sessionStore, notifyStore, reminder.NewOutboxSender(notifyStore),
		reminder.Options{ClosingHours: cfg.Reminders.ClosingHours})

	app := feedback.NewApp(
		feedback.NewSessionService(sessionStore, notifyStore, stores.NewResponderStore(database)),
		scheduler,
		cfg,
		database,
	)
	return app, &Flags{DataDir: dataDir, Config: cfg}
}

func runCLI(t *testing.T, app *feedback.App, flags *Flags, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	root := &cli.Command{Name: "feedback", Writer: &buf, ErrWriter: &buf}
	root = NewImportCmd(flags, app).Register(root)
	root = NewValidateCmd(flags).Register(root)
	root = NewLsCmd(flags, app).Register(root)
	root = NewStatusCmd(flags, app).Register(root)
	root = NewPublishCmd(flags, app).Register(root)
	root = NewRespondCmd(flags, app).Register(root)
	root = NewRemindCmd(flags, app).Register(root)
	root = NewRmCmd(flags, app).Register(root)
	root = NewDBCmd(flags, app).Register(root)

	err := root.Run(context.Background(), append([]string{"feedback"}, args...))
	return buf.String(), err
}

func writeSessions(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "courses", "cs101")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "sessions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sessionsYAML), 0o644))
	return path
}

func TestSessionID(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"Week 1/CS101", "Week 1%CS101"},
		{"Week 1%CS101", "Week 1%CS101"},
		{"a/b/CS101", "a/b%CS101"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SessionID(tt.arg), tt.arg)
	}
}

func TestDefaultPaths_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	assert.Equal(t, filepath.Join("/cfg", "feedback", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "feedback"), DefaultDataDir())
	assert.Equal(t, filepath.Join("/state", "feedback", "feedback.log"), DefaultLogFile())
}

func TestDefaultPaths_Home(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "feedback", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join(home, ".local", "share", "feedback"), DefaultDataDir())
}

func TestImportAndList(t *testing.T) {
	app, flags := newTestApp(t)
	path := writeSessions(t)
	pattern := filepath.Join(filepath.Dir(filepath.Dir(path)), "**", "*.yaml")

	out, err := runCLI(t, app, flags, "import", pattern)
	require.Error(t, err)
	assert.Contains(t, out, "1 created, 0 updated, 1 failed")
	assert.Contains(t, out, "Broken/CS101")
	assert.Contains(t, out, "The end time for this feedback session must be later than the start time.")

	out, err = runCLI(t, app, flags, "import", path)
	require.Error(t, err)
	assert.Contains(t, out, "0 created, 1 updated, 1 failed")

	out, err = runCLI(t, app, flags, "ls", "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &info))
	assert.Equal(t, "Week 1%CS101", info["id"])
	assert.Equal(t, "closed", info["phase"])
}

func TestImport_DryRunSavesNothing(t *testing.T) {
	app, flags := newTestApp(t)

	_, err := runCLI(t, app, flags, "import", "--dry-run", writeSessions(t))
	require.Error(t, err)

	sessions, err := app.Sessions.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

const undatedYAML = `
sessions:
  - name: Week 2
    course_id: CS101
    creator_email: prof@uni.edu
    instructions: No creation time given
    window:
      start: 2024-01-02T00:00:00Z
      end: 2024-01-09T00:00:00Z
      visible_from: follow_opening
      results_visible_from: later
`

func TestImport_DryRunMatchesImport(t *testing.T) {
	app, flags := newTestApp(t)
	path := filepath.Join(t.TempDir(), "undated.yaml")
	require.NoError(t, os.WriteFile(path, []byte(undatedYAML), 0o644))

	out, err := runCLI(t, app, flags, "import", "--dry-run", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "0 failed")
	assert.NotContains(t, out, "creation time")

	out, err = runCLI(t, app, flags, "import", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 created, 0 updated, 0 failed")

	stored, err := app.Sessions.Get(context.Background(), "Week 2%CS101")
	require.NoError(t, err)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestImport_NoMatches(t *testing.T) {
	app, flags := newTestApp(t)

	_, err := runCLI(t, app, flags, "import", filepath.Join(t.TempDir(), "*.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files matched")
}

func TestValidate(t *testing.T) {
	app, flags := newTestApp(t)

	out, err := runCLI(t, app, flags, "validate", "-f", writeSessions(t), "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 session(s)")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"valid":true`)
	assert.Contains(t, lines[1], `"valid":false`)
}

func TestPublishStatusAndRemove(t *testing.T) {
	app, flags := newTestApp(t)
	_, _ = runCLI(t, app, flags, "import", writeSessions(t))

	out, err := runCLI(t, app, flags, "publish", "Week 1/CS101")
	require.NoError(t, err)
	assert.Equal(t, "published Week 1/CS101\n", out)

	out, err = runCLI(t, app, flags, "status", "Week 1/CS101", "--json")
	require.NoError(t, err)

	var st struct {
		Window struct {
			Phase     string `json:"phase"`
			Published bool   `json:"published"`
		} `json:"window"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "closed", st.Window.Phase)
	assert.True(t, st.Window.Published)

	_, err = runCLI(t, app, flags, "respond", "Week 1/CS101", "--email", "s@uni.edu")
	require.ErrorIs(t, err, feedback.ErrNotAcceptingResponses)

	out, err = runCLI(t, app, flags, "rm", "Week 1/CS101")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted Week 1/CS101")

	_, err = runCLI(t, app, flags, "status", "Week 1/CS101")
	assert.Error(t, err)

	out, err = runCLI(t, app, flags, "status", "Week 1/CS101", "--json")
	require.Error(t, err)

	var jerr iojson.Error
	require.NoError(t, json.Unmarshal([]byte(out), &jerr))
	assert.Equal(t, "Week 1%CS101", jerr.Data["session_id"])
	assert.Contains(t, jerr.Message, "not found")
}

func TestRemind(t *testing.T) {
	app, flags := newTestApp(t)
	_, _ = runCLI(t, app, flags, "import", writeSessions(t))
	_, err := runCLI(t, app, flags, "publish", "Week 1/CS101")
	require.NoError(t, err)

	out, err := runCLI(t, app, flags, "remind", "--json")
	require.NoError(t, err)

	var res reminder.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Checked)
	assert.Equal(t, 1, res.Published)

	out, err = runCLI(t, app, flags, "remind", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "have been published")

	out, err = runCLI(t, app, flags, "remind", "disable", "Week 1/CS101", "closing")
	require.NoError(t, err)
	assert.Contains(t, out, "closing reminders disabled")
}

func TestDBStatusAndRollback(t *testing.T) {
	app, flags := newTestApp(t)

	out, err := runCLI(t, app, flags, "db", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "0001")
	assert.Contains(t, out, "responders")

	out, err = runCLI(t, app, flags, "db", "rollback")
	require.NoError(t, err)
	assert.Contains(t, out, "reverted 1 migration(s), schema is at version 2")

	out, err = runCLI(t, app, flags, "db", "status", "--json")
	require.NoError(t, err)

	var applied []db.AppliedMigration
	require.NoError(t, json.Unmarshal([]byte(out), &applied))
	require.Len(t, applied, 2)
	assert.Equal(t, "notifications", applied[1].Name)
}
