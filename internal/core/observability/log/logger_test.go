package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		out = append(out, entry)
	}
	return out
}

func TestJSONFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger := NewWithOptions(Options{Level: LevelInfo, Outputs: []string{path}})

	scoped := logger.With(String("component", "reconciler"))
	scoped.Info("Spawned entity",
		String("entity", "torch_02"),
		Int("components", 5),
		Bool("headless", false),
		Duration("took", 2*time.Millisecond),
		Strings("tags", []string{"light_source"}),
		Error(errors.New("boom")),
	)
	scoped.Debug("filtered out")
	require.NoError(t, logger.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "Spawned entity", e["msg"])
	assert.Equal(t, "info", e["level"])
	assert.Equal(t, "reconciler", e["component"])
	assert.Equal(t, "torch_02", e["entity"])
	assert.EqualValues(t, 5, e["components"])
	assert.Equal(t, false, e["headless"])
	assert.Equal(t, "boom", e["error"])
	assert.Equal(t, []any{"light_source"}, e["tags"])
}

func TestSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger := NewWithOptions(Options{Level: LevelWarn, Outputs: []string{path}})
	assert.Equal(t, LevelWarn, logger.GetLevel())

	logger.Info("dropped")
	logger.SetLevel(LevelDebug)
	logger.Debug("kept")
	logger.Log(LevelError, "also kept")
	require.NoError(t, logger.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, "error", LevelError.String())
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
	assert.NotPanics(t, func() { OrNop(nil).Warn("discarded", String("k", "v")) })
}
