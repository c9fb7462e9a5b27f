package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("yaml overlays defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
database:
  type: sqlite
  sqlite:
    path: /tmp/catalog.db
cleanup:
  enabled: true
  retention_days: 30
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Type)
		assert.Equal(t, "/tmp/catalog.db", cfg.Database.SQLite.Path)
		assert.True(t, cfg.Cleanup.Enabled)
		assert.Equal(t, 30, cfg.Cleanup.RetentionDays)
		// untouched sections keep their defaults
		assert.Equal(t, 1000, cfg.Cleanup.MaxDeletionCount)
		assert.Equal(t, 8080, cfg.Server.Port)
	})

	t.Run("unknown database type is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("database:\n  type: oracle\n"), 0o644))

		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oracle")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("database: [\n"), 0o644))

		_, err := LoadConfig(path)
		require.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("PORT", "9090")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 6543, cfg.Database.Postgres.Port)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Minute, cfg.Database.GetConnMaxLifetime())
	assert.Equal(t, 30*time.Second, cfg.Server.GetRequestTimeout())
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "catalog.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
