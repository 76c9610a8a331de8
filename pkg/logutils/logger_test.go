package logutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileAppends(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "feedback.log")

	for _, msg := range []string{"first", "second"} {
		l, closer, err := New("info", file)
		require.NoError(t, err)
		l.Info().Msg(msg)
		l.Debug().Msg("hidden")
		closer()
	}

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "second", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_BadLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	assert.NotNil(t, closer)
}

func TestNew_EmptyLevelIsInfo(t *testing.T) {
	l, closer, err := New("", Stderr)
	require.NoError(t, err)
	defer closer()

	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestNew_UnwritableFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "logs")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, closer, err := New("info", filepath.Join(blocker, "feedback.log"))
	require.Error(t, err)
	assert.NotNil(t, closer)
}
