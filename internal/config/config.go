package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config carries the environment-driven settings of the replay tool.
// Everything query-specific (source, date, fields) comes from the CLI.
type Config struct {
	LogLevel       string `env:"REPLAY_LOG_LEVEL" envDefault:"info"`
	FileSuffix     string `env:"REPLAY_FILE_SUFFIX" envDefault:".jsonl.gz"`
	GCSCredentials string `env:"REPLAY_GCS_CREDENTIALS"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured level name onto slog. Unknown names fall
// back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
