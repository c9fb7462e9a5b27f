package app

import (
	"fmt"

	"property-catalog/internal/config"
	"property-catalog/internal/logger"

	"github.com/joho/godotenv"
)

// DefaultConfigPath is used when CONFIG_PATH is not set
const DefaultConfigPath = "config/catalog.yaml"

// Bootstrap loads .env, the YAML config and the environment overlay, then
// builds the logger. A missing .env or config file is not an error.
func Bootstrap(configPath string) (*config.Config, *logger.Logger, error) {
	_ = godotenv.Load()

	if configPath == "" {
		configPath = config.GetEnv("CONFIG_PATH", DefaultConfigPath)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	log.Debug("configuration loaded", "path", configPath, "database", cfg.Database.Type)

	return cfg, log, nil
}
