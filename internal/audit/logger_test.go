package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogActionWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, Options{MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)
	defer logger.Close()

	logger.LogAction("set_frequency", "rig-1", "SUCCESS", 12*time.Millisecond)
	logger.LogAction("set_mode", "rig-1", "ERROR", 3*time.Millisecond)

	f, err := os.Open(filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, entries, 2)

	assert.Equal(t, "set_frequency", entries[0].Action)
	assert.Equal(t, "rig-1", entries[0].RigID)
	assert.Equal(t, "SUCCESS", entries[0].Outcome)
	assert.Equal(t, int64(12), entries[0].LatencyMS)
	assert.False(t, entries[0].Timestamp.IsZero())

	assert.Equal(t, "ERROR", entries[1].Outcome)
}

func TestNewLoggerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	logger, err := NewLogger(dir, Options{})
	require.NoError(t, err)
	defer logger.Close()

	logger.LogAction("open", "rig-1", "SUCCESS", 0)

	_, err = os.Stat(filepath.Join(dir, "audit.jsonl"))
	assert.NoError(t, err)
}

func TestWriterLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)

	logger := NewWriterLogger(f)
	logger.LogAction("close", "rig-2", "SUCCESS", time.Millisecond)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"close"`)
	assert.Contains(t, string(data), `"rigId":"rig-2"`)
}
