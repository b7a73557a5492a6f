package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "backend/json_files", cfg.Data.BackendFilesDir)
	assert.True(t, cfg.BackendFilesEnabled())
	assert.False(t, cfg.Data.UseSampleData)
	assert.Equal(t, "http://localhost:8000", cfg.Analyst.URL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PERSONA_API", "http://pipeline:9000")

	path := writeConfig(t, `
server:
  port: "9090"
  mode: release
data:
  use_backend_files: false
  use_sample_data: true
  api_base_url: ${PERSONA_API}
analyst:
  enabled: true
  requests_per_minute: 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.False(t, cfg.BackendFilesEnabled())
	assert.True(t, cfg.Data.UseSampleData)
	assert.Equal(t, "http://pipeline:9000", cfg.Data.APIBaseURL)
	assert.Equal(t, "http://pipeline:9000", cfg.Analyst.URL)
	assert.True(t, cfg.Analyst.Enabled)
	assert.Equal(t, 5, cfg.Analyst.RequestsPerMinute)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "server: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode config file")
}

func TestLoadConfigUnsetEnvFallsBack(t *testing.T) {
	t.Setenv("PERSONA_UNSET_URL", "")

	cfg, err := LoadConfig(writeConfig(t, "data:\n  api_base_url: ${PERSONA_UNSET_URL}\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.Data.APIBaseURL)
}
