package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Options{Level: "warn", Output: &buf})
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("provider failed", "provider", "openai", "status", 500)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "provider failed", entry["msg"])
	assert.Equal(t, "openai", entry["provider"])
	assert.EqualValues(t, 500, entry["status"])
}

func TestNew_TeesIntoFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "moodboard.log")

	logger, closer := New(Options{Output: &buf, FilePath: path})
	logger.Info("started", "addr", ":8080")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"started"`)
	assert.Equal(t, buf.String(), string(data))
}

func TestFromContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Options{Output: &buf})

	ctx := WithRequestID(context.Background(), "req-1")
	FromContext(ctx, logger).Info("hello")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Same(t, logger, FromContext(context.Background(), logger))
}
