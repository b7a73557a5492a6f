package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Options{Level: "warn"}, zapcore.AddSync(&buf))

	logger.Info("Hidden")
	logger.Warn("Shown", zap.String("persona_id", "C001"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "Hidden")
	assert.Contains(t, out, `"msg":"Shown"`)
	assert.Contains(t, out, `"persona_id":"C001"`)
}

func TestNewWithWriterBadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Options{Level: "loud"}, zapcore.AddSync(&buf))

	logger.Debug("Debug line")
	logger.Info("Info line")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "Debug line")
	assert.Contains(t, buf.String(), "Info line")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	var buf bytes.Buffer
	logger := NewWithWriter(Options{Level: "info", File: path, MaxSizeMB: 1}, zapcore.AddSync(&buf))

	logger.Info("Snapshot loaded", zap.Int("personas", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Snapshot loaded"`)
	assert.Contains(t, string(data), `"personas":3`)
}
