package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type            string         `yaml:"type"` // mysql | postgres | sqlite
	MySQL           MySQLConfig    `yaml:"mysql"`
	Postgres        PostgresConfig `yaml:"postgres"`
	SQLite          SQLiteConfig   `yaml:"sqlite"`
	MaxOpenConns    int            `yaml:"max_open_conns"`
	MaxIdleConns    int            `yaml:"max_idle_conns"`
	ConnMaxLifetime int            `yaml:"conn_max_lifetime_minutes"`
	LogLevel        string         `yaml:"log_level"` // silent | error | warn | info
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SQLiteConfig contains the SQLite file location
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                  int      `yaml:"port"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
}

// RateLimitConfig limits write requests (POST/PUT/DELETE)
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// CleanupConfig controls the purge of soft-deleted listings
type CleanupConfig struct {
	Enabled          bool   `yaml:"enabled"`
	RetentionDays    int    `yaml:"retention_days"`
	MaxDeletionCount int    `yaml:"max_deletion_count"`
	DailyRunTime     string `yaml:"daily_run_time"`
	DryRun           bool   `yaml:"dry_run"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Mode        string `yaml:"mode"` // production | development
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type: "mysql",
			MySQL: MySQLConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "catalog",
				Database: "property_catalog",
			},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "catalog",
				Database: "property_catalog",
				SSLMode:  "disable",
			},
			SQLite: SQLiteConfig{
				Path: "property_catalog.db",
			},
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30,
			LogLevel:        "warn",
		},
		Server: ServerConfig{
			Port:                  8080,
			AllowedOrigins:        []string{"http://localhost:3000"},
			RequestTimeoutSeconds: 30,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			RequestsPerHour:   1800,
		},
		Cleanup: CleanupConfig{
			Enabled:          false,
			RetentionDays:    90,
			MaxDeletionCount: 1000,
			DailyRunTime:     "03:00",
			DryRun:           false,
		},
		Logging: LoggingConfig{
			Mode:        "development",
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// Validate checks values that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown database type %q", c.Database.Type)
	}
	if c.Cleanup.RetentionDays < 0 {
		return fmt.Errorf("cleanup.retention_days must not be negative")
	}
	if c.Cleanup.MaxDeletionCount < 0 {
		return fmt.Errorf("cleanup.max_deletion_count must not be negative")
	}
	return nil
}

// GetConnMaxLifetime returns the pool connection lifetime as a duration
func (c *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetime) * time.Minute
}

// GetRequestTimeout returns the request timeout as a duration
func (c *ServerConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// GetEnv returns the environment value for key or defaultValue when unset
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvOrConfig prefers the config value, then the environment, then the default
func GetEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return GetEnv(envKey, defaultValue)
}

// ApplyEnv overlays connection settings from the environment (.env included)
func (c *Config) ApplyEnv() {
	c.Database.Type = GetEnv("DB_TYPE", c.Database.Type)

	c.Database.MySQL.Host = GetEnv("MYSQL_HOST", c.Database.MySQL.Host)
	c.Database.MySQL.User = GetEnv("MYSQL_USER", c.Database.MySQL.User)
	c.Database.MySQL.Password = GetEnvOrConfig(c.Database.MySQL.Password, "MYSQL_PASSWORD", "")
	c.Database.MySQL.Database = GetEnv("MYSQL_DATABASE", c.Database.MySQL.Database)
	if port, err := strconv.Atoi(os.Getenv("MYSQL_PORT")); err == nil {
		c.Database.MySQL.Port = port
	}

	c.Database.Postgres.Host = GetEnv("POSTGRES_HOST", c.Database.Postgres.Host)
	c.Database.Postgres.User = GetEnv("POSTGRES_USER", c.Database.Postgres.User)
	c.Database.Postgres.Password = GetEnvOrConfig(c.Database.Postgres.Password, "POSTGRES_PASSWORD", "")
	c.Database.Postgres.Database = GetEnv("POSTGRES_DB", c.Database.Postgres.Database)
	if port, err := strconv.Atoi(os.Getenv("POSTGRES_PORT")); err == nil {
		c.Database.Postgres.Port = port
	}

	c.Database.SQLite.Path = GetEnv("SQLITE_PATH", c.Database.SQLite.Path)

	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		c.Server.Port = port
	}
	c.Logging.Mode = GetEnv("LOG_MODE", c.Logging.Mode)
	c.Logging.Level = GetEnv("LOG_LEVEL", c.Logging.Level)
}
