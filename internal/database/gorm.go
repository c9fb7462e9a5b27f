package database

import (
	"fmt"
	"strings"
	"time"

	"property-catalog/internal/config"
	"property-catalog/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	db *gorm.DB
}

// storeNow is the single clock for persisted timestamps.
func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func gormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		Logger:  logger.Default.LogMode(gormLogLevel(logLevel)),
		NowFunc: storeNow,
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// NewGormDB opens a MySQL connection. clientFoundRows makes RowsAffected count
// matched rows, so an update that changes nothing is still reported as found.
func NewGormDB(cfg config.DatabaseConfig) (*GormDB, error) {
	m := cfg.MySQL
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
		m.User, m.Password, m.Host, m.Port, m.Database)

	db, err := gorm.Open(mysql.Open(dsn), gormConfig(cfg.LogLevel))
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	return &GormDB{db: db}, nil
}

// NewSQLiteDB opens a SQLite file with foreign keys enforced. SQLite allows a
// single writer, so the pool is pinned to one connection.
func NewSQLiteDB(path, logLevel string) (*GormDB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(logLevel))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return &GormDB{db: db}, nil
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates missing tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.PropertyImage{},
		&models.PurgeLog{},
	)
}
