package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sevens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, "redis:\n  addr: redis:6379\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7H", cfg.Game.OpenerCard)
	assert.Equal(t, 10, cfg.Game.MaxReshuffleAttempts)
	assert.Equal(t, 30, cfg.Game.TurnTimeoutSeconds)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "sevens", cfg.Redis.KeyPrefix)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfigFile(t, `
game:
  opener_card: 7S
  max_reshuffle_attempts: 5
  turn_timeout_seconds: 0
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	opener, err := cfg.Game.Opener()
	require.NoError(t, err)
	assert.Equal(t, "7S", opener.Token())
	assert.Equal(t, 5, cfg.Game.MaxReshuffleAttempts)
	assert.Zero(t, cfg.Game.TurnTimeoutSeconds)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsNonSevenOpener(t *testing.T) {
	path := writeConfigFile(t, "game:\n  opener_card: 8H\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "not a seven")
}

func TestLoadRejectsBadToken(t *testing.T) {
	path := writeConfigFile(t, "game:\n  opener_card: xx\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
