package app

import (
	"context"
	"path/filepath"
	"testing"

	"property-catalog/internal/config"
	"property-catalog/internal/database"
	"property-catalog/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackendSQLite(t *testing.T) {
	cfg := config.DefaultConfig().Database
	cfg.Type = "sqlite"
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "app.db")
	cfg.LogLevel = "silent"

	b, err := OpenBackend(cfg, logger.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.NotNil(t, b.GormDB)
	assert.IsType(t, &database.GormStore{}, b.Store)

	all, err := b.Store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpenBackendUnknownType(t *testing.T) {
	cfg := config.DefaultConfig().Database
	cfg.Type = "oracle"

	_, err := OpenBackend(cfg, logger.NewNop())
	assert.Error(t, err)
}
