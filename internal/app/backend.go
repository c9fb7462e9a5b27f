package app

import (
	"fmt"

	"property-catalog/internal/config"
	"property-catalog/internal/database"
	"property-catalog/internal/logger"
	"property-catalog/internal/repository"
)

// Backend is an opened store plus the handles needed for shutdown.
// GormDB is nil on the PostgreSQL backend, which has no purge support.
type Backend struct {
	Type   string
	Store  repository.Store
	GormDB *database.GormDB
	close  func() error
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend connects to the configured database, creates missing tables and
// returns the matching aggregate store.
func OpenBackend(cfg config.DatabaseConfig, log *logger.Logger) (*Backend, error) {
	switch cfg.Type {
	case "mysql", "sqlite":
		var (
			gdb *database.GormDB
			err error
		)
		if cfg.Type == "mysql" {
			log.Info("using MySQL with GORM", "host", cfg.MySQL.Host, "database", cfg.MySQL.Database)
			gdb, err = database.NewGormDB(cfg)
		} else {
			log.Info("using SQLite with GORM", "path", cfg.SQLite.Path)
			gdb, err = database.NewSQLiteDB(cfg.SQLite.Path, cfg.LogLevel)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
		}
		if err := gdb.InitSchema(); err != nil {
			gdb.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return &Backend{
			Type:   cfg.Type,
			Store:  database.NewGormStore(gdb, log),
			GormDB: gdb,
			close:  gdb.Close,
		}, nil

	case "postgres":
		log.Info("using PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		db, err := database.NewDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := db.InitSchema(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return &Backend{
			Type:  cfg.Type,
			Store: database.NewSQLStore(db, log),
			close: db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Type)
	}
}
