package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseDir string `env:"DATABASE_DIR" envDefault:"database"`
	Workers     int    `env:"WORKERS" envDefault:"1"`
	Yahoo       Yahoo
}

type Yahoo struct {
	BaseURL   string        `env:"YAHOO_BASE_URL"`
	CookieURL string        `env:"YAHOO_COOKIE_URL"`
	CrumbURL  string        `env:"YAHOO_CRUMB_URL"`
	Timeout   time.Duration `env:"YAHOO_TIMEOUT" envDefault:"30s"`
	Debug     bool          `env:"YAHOO_DEBUG" envDefault:"false"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables take precedence over it.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
