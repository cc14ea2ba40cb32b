package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeLines decodes all JSON log lines of a buffer.
func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}

		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}

	return records
}

// TestSlogManager_FanOut tests records reaching all handlers enabled for
// their level.
func TestSlogManager_FanOut(t *testing.T) {
	t.Parallel()

	var debugBuf, infoBuf bytes.Buffer

	mgr := newSlogManager()
	mgr.AddHandler("debug", slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mgr.AddHandler("info", slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger := slog.New(mgr)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	logger.Debug("File opened", "file", "file1")
	logger.Info("File closed", "file", "file1")

	assert.Len(t, decodeLines(t, debugBuf.Bytes()), 2)

	infoRecords := decodeLines(t, infoBuf.Bytes())
	require.Len(t, infoRecords, 1)
	assert.Equal(t, "File closed", infoRecords[0]["msg"])
	assert.Equal(t, "file1", infoRecords[0]["file"])

	mgr.RemoveHandler("debug")
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))
}

// TestSlogManager_AttrsGroups tests that attributes and groups of derived
// managers apply to handlers added later.
func TestSlogManager_AttrsGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	mgr := newSlogManager()
	derived, ok := mgr.WithAttrs([]slog.Attr{slog.String("process", "p1")}).WithGroup("op").(*slogManager)
	require.True(t, ok)

	derived.AddHandler("late", slog.NewJSONHandler(&buf, nil))
	slog.New(derived).Info("File read", "fid", "0.1")

	records := decodeLines(t, buf.Bytes())
	require.Len(t, records, 1)
	assert.Equal(t, "p1", records[0]["process"])

	group, ok := records[0]["op"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0.1", group["fid"])

	assert.Empty(t, mgr.handlers, "parent manager should be unchanged")
}

// TestAddLogFile_Success tests logging into a file and detaching it.
func TestAddLogFile_Success(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sfs.log")

	mgr := newSlogManager()
	closeLog, err := addLogFile(mgr, path, slog.LevelInfo)
	require.NoError(t, err)

	slog.New(mgr).Info("File created", "file", "file1")
	require.NoError(t, closeLog())

	slog.New(mgr).Info("Not logged")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	records := decodeLines(t, data)
	require.Len(t, records, 1)
	assert.Equal(t, "file1", records[0]["file"])

	_, err = addLogFile(mgr, filepath.Join(t.TempDir(), "missing", "sfs.log"), slog.LevelInfo)
	require.Error(t, err)
}
