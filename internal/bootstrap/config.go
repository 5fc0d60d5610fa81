package bootstrap

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/escolaweb/portal-core/config"
)

// InitLogger configures the process-wide structured logger. Dev mode lowers
// the level to Debug; output is always JSON.
func InitLogger(isDev bool) *slog.Logger {
	level := slog.LevelInfo
	if isDev {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig reads configuration from a .env file (when present) and the
// process environment, then applies guardrails.
func LoadConfig() (*config.AppConfig, error) {
	// A missing .env file is not an error; the environment may be complete.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &config.AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}
