package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/pkg/logger"
)

// Config holds application configuration
type Config struct {
	Port            string
	DBPath          string
	JWTSecret       string
	LogLevel        string
	DebounceWindow  time.Duration
	SyncInterval    models.SyncInterval
	LengthCacheSize int
	ImportDir       string
}

// Load reads configuration from the environment, falling back to defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", ":8080"),
		DBPath:    getEnv("DB_PATH", "./data/routes/routes.db"),
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		LogLevel:  getEnv("LOG_LEVEL", logger.LevelInfo),
		ImportDir: getEnv("IMPORT_DIR", "./data/fit"),
	}

	if !logger.ValidateLogLevel(cfg.LogLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}

	debounce, err := time.ParseDuration(getEnv("DEBOUNCE_WINDOW", "300ms"))
	if err != nil || debounce < 0 {
		return nil, fmt.Errorf("invalid DEBOUNCE_WINDOW: %q", os.Getenv("DEBOUNCE_WINDOW"))
	}
	cfg.DebounceWindow = debounce

	cfg.SyncInterval, err = models.ParseSyncInterval(getEnv("SYNC_INTERVAL", string(models.SyncMonth)))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}

	size, err := strconv.Atoi(getEnv("LENGTH_CACHE_SIZE", "4096"))
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("invalid LENGTH_CACHE_SIZE: %q", os.Getenv("LENGTH_CACHE_SIZE"))
	}
	cfg.LengthCacheSize = size

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
