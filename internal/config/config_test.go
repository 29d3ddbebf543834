package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:3001", cfg.Server.Addr())
	assert.Equal(t, 30*time.Millisecond, cfg.Stream.MinDelay)
	assert.Equal(t, 70*time.Millisecond, cfg.Stream.MaxDelay)
	assert.InDelta(t, 0.5, cfg.Stream.ExecutionChance, 0.0001)
	assert.Equal(t, "http://localhost:3001", cfg.Client.BaseURL)
	assert.Equal(t, 3, cfg.Client.MaxRetries)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truesignal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
stream:
  min_delay: 5ms
  max_delay: 10ms
  execution_chance: 0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Millisecond, cfg.Stream.MinDelay)
	assert.Zero(t, cfg.Stream.ExecutionChance)
}

func TestLoadRejectsMissingNamedFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream:\n  execution_chance: 2\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "execution_chance")
}
