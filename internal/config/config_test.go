package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-wallet/lantern/internal/config"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := config.Defaults()
	cfg.Network = "stagenet"
	cfg.Sync.IntervalSeconds = 30
	cfg.Relay.ShareAddress = true

	err := config.Save(cfg, path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Version, loaded.Version)
	assert.Equal(t, "stagenet", loaded.Network)
	assert.Equal(t, 30, loaded.Sync.IntervalSeconds)
	assert.True(t, loaded.Relay.ShareAddress)
	assert.Equal(t, cfg.Nodes.Builtin, loaded.Nodes.Builtin)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "~/.lantern", cfg.Home)
	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, int64(120), cfg.Chain.BlockTimeSeconds)
	assert.Equal(t, 7, cfg.Chain.LookbackDays)
	assert.Equal(t, 90, cfg.Chain.ClampDays)
	assert.Len(t, cfg.Nodes.Builtin, 3)
	assert.Equal(t, 60, cfg.Sync.IntervalSeconds)
	assert.Equal(t, 4, cfg.Security.PinMinDigits)
	assert.Equal(t, 32, cfg.Security.PinMaxDigits)
	assert.Equal(t, 5, cfg.Security.UnlockAttempts)
	assert.True(t, cfg.Security.MemoryLock)
	assert.False(t, cfg.Relay.ShareAddress)
}

func TestApplyEnvironment(t *testing.T) {
	cfg := config.Defaults()

	t.Setenv(config.EnvHome, "/tmp/lantern-test")
	t.Setenv(config.EnvNetwork, "Stagenet")
	t.Setenv(config.EnvLogLevel, "DEBUG")
	t.Setenv(config.EnvSyncInterval, "15")
	t.Setenv(config.EnvShareAddress, "yes")
	t.Setenv(config.EnvNodeURI, " https://localhost:18081 ")

	config.ApplyEnvironment(cfg)

	assert.Equal(t, "/tmp/lantern-test", cfg.Home)
	assert.Equal(t, "stagenet", cfg.Network)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 15, cfg.Sync.IntervalSeconds)
	assert.True(t, cfg.Relay.ShareAddress)
	assert.Equal(t, "https://localhost:18081", cfg.Nodes.Builtin[0].URI)
}

func TestApplyEnvironment_InvalidIntervalIgnored(t *testing.T) {
	cfg := config.Defaults()
	t.Setenv(config.EnvSyncInterval, "not-a-number")
	config.ApplyEnvironment(cfg)
	assert.Equal(t, 60, cfg.Sync.IntervalSeconds)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("off level is nop", func(t *testing.T) {
		t.Parallel()
		logger, err := config.NewLogger(config.LoggingConfig{Level: "off"})
		require.NoError(t, err)
		logger.Errorf("discarded %d", 1)
	})

	t.Run("writes to file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "lantern.log")
		logger, err := config.NewLogger(config.LoggingConfig{Level: "debug", File: path})
		require.NoError(t, err)

		logger.Debugf("hello %s", "world")
		require.NoError(t, logger.Sync())

		data, err := os.ReadFile(path) //nolint:gosec // test-controlled path
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello world")
	})
}
