// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/lifeboard/internal/api"
	"github.com/mcoot/lifeboard/internal/factory"
	"github.com/mcoot/lifeboard/internal/services/gesture"
	redisstorage "github.com/mcoot/lifeboard/internal/storage/redis"
)

// Server is the lifeboard server configuration
type Server struct {
	Host string `env:"LIFEBOARD_HOST"`
	Port int    `env:"LIFEBOARD_PORT" envDefault:"8080"`

	StorageType  string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL     string        `env:"REDIS_URL"`
	RedisGameTTL time.Duration `env:"REDIS_GAME_TTL" envDefault:"72h"`

	HoldDelay time.Duration `env:"LIFEBOARD_HOLD_DELAY" envDefault:"500ms"`
	StaticDir string        `env:"LIFEBOARD_STATIC_DIR"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the server configuration
func Load() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with
func (c Server) Validate() error {
	switch c.StorageType {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory or redis", c.StorageType)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid LIFEBOARD_PORT %d", c.Port)
	}
	if c.HoldDelay <= 0 {
		return fmt.Errorf("invalid LIFEBOARD_HOLD_DELAY %s", c.HoldDelay)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LOG_LEVEL
func (c Server) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	return level, nil
}

// Factory builds the application factory config
func (c Server) Factory(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: c.StorageType,
		Gesture: gesture.Config{
			HoldDelay:       c.HoldDelay,
			BurstMultiplier: gesture.DefaultConfig().BurstMultiplier,
		},
	}
	if c.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.GameTTL = c.RedisGameTTL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// HTTP returns the HTTP server settings
func (c Server) HTTP() api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	return cfg
}
