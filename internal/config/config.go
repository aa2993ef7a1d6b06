// Package config loads bgrules settings from a YAML or TOML file and
// BGR_-prefixed environment variables, on top of built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"

	"github.com/yourusername/bgrules/pkg/engine"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BGR_"

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server" envPrefix:"SERVER_"`
	Log    LogConfig    `yaml:"log" toml:"log" envPrefix:"LOG_"`
	Store  StoreConfig  `yaml:"store" toml:"store" envPrefix:"STORE_"`
	Game   GameConfig   `yaml:"game" toml:"game" envPrefix:"GAME_"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host           string        `yaml:"host" toml:"host" env:"HOST"`
	Port           int           `yaml:"port" toml:"port" env:"PORT"`
	PublicURL      string        `yaml:"public_url" toml:"public_url" env:"PUBLIC_URL"`
	ReadTimeout    time.Duration `yaml:"read_timeout" toml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" toml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" toml:"idle_timeout" env:"IDLE_TIMEOUT"`
	MaxFastWorkers int           `yaml:"max_fast_workers" toml:"max_fast_workers" env:"MAX_FAST_WORKERS"`
	MaxSlowWorkers int           `yaml:"max_slow_workers" toml:"max_slow_workers" env:"MAX_SLOW_WORKERS"`
	AllowedOrigins []string      `yaml:"allowed_origins" toml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" toml:"level" env:"LEVEL"`
	Development bool   `yaml:"development" toml:"development" env:"DEVELOPMENT"`
}

// StoreConfig selects the session store.
type StoreConfig struct {
	Driver string `yaml:"driver" toml:"driver" env:"DRIVER"` // "memory", "sqlite" or "none"
	Path   string `yaml:"path" toml:"path" env:"PATH"`
}

// GameConfig holds rules-engine settings.
type GameConfig struct {
	DefaultVariant string `yaml:"default_variant" toml:"default_variant" env:"DEFAULT_VARIANT"`
	Seed           int64  `yaml:"seed" toml:"seed" env:"SEED"` // 0 = random
	MaxSimGames    int    `yaml:"max_sim_games" toml:"max_sim_games" env:"MAX_SIM_GAMES"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxFastWorkers: 100,
			MaxSlowWorkers: 2,
		},
		Log: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Driver: "memory",
			Path:   "bgrules.db",
		},
		Game: GameConfig{
			DefaultVariant: string(engine.Casual),
			MaxSimGames:    10000,
		},
	}
}

// Load returns the defaults overlaid with the file at path (if not empty)
// and then with the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, c)
	case ".toml":
		_, err = toml.Decode(string(data), c)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Store.Driver {
	case "memory", "none":
	case "sqlite":
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path is required for sqlite")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if _, err := engine.ParseVariant(c.Game.DefaultVariant); err != nil {
		return fmt.Errorf("game.default_variant: %w", err)
	}
	return nil
}

// Addr is the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
