// Package config loads the valuation service settings from config/valuation.yaml,
// .env and the process environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is where the YAML settings are looked up when no path is given.
const DefaultPath = "config/valuation.yaml"

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	AllowOrigin string `yaml:"allow_origin"`
}

type StorageConfig struct {
	DatabaseURL string `yaml:"database_url"`
	CacheDir    string `yaml:"cache_dir"` // file vault used when no database is configured
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads path (a missing file is not an error), applies .env and environment
// overrides, then fills defaults.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"VALUATION_ADDR", &cfg.Server.Addr},
		{"VALUATION_ALLOW_ORIGIN", &cfg.Server.AllowOrigin},
		{"DATABASE_URL", &cfg.Storage.DatabaseURL},
		{"VALUATION_CACHE_DIR", &cfg.Storage.CacheDir},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"LOG_FORMAT", &cfg.Log.Format},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.AllowOrigin == "" {
		cfg.Server.AllowOrigin = "*"
	}
	if cfg.Storage.CacheDir == "" {
		cfg.Storage.CacheDir = ".cache/valuations"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
