// Package config loads casenav settings from an optional YAML file overlaid
// by CASENAV_* environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CASENAV_"

// Config is the full runtime configuration.
type Config struct {
	Listen    string `yaml:"listen" env:"LISTEN"`
	AppsDir   string `yaml:"apps_dir" env:"APPS_DIR"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
	PageSize  int    `yaml:"page_size" env:"PAGE_SIZE"`
	Metrics   bool   `yaml:"metrics" env:"METRICS"`

	Store  StoreConfig  `yaml:"store" envPrefix:"STORE_"`
	Cache  CacheConfig  `yaml:"cache" envPrefix:"CACHE_"`
	Redis  RedisConfig  `yaml:"redis" envPrefix:"REDIS_"`
	Remote RemoteConfig `yaml:"remote" envPrefix:"REMOTE_"`
}

// StoreConfig selects and configures session persistence.
type StoreConfig struct {
	Backend    string `yaml:"backend" env:"BACKEND"`
	Dir        string `yaml:"dir" env:"DIR"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`

	// EncryptionKey is a base64 AES-256 key; empty disables encryption.
	EncryptionKey string   `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
	FallbackKeys  []string `yaml:"fallback_keys" env:"FALLBACK_KEYS" envSeparator:","`
	PIIPatterns   []string `yaml:"pii_patterns" env:"PII_PATTERNS" envSeparator:","`
}

// CacheConfig selects the query cache.
type CacheConfig struct {
	Backend string        `yaml:"backend" env:"BACKEND"`
	TTL     time.Duration `yaml:"ttl" env:"TTL"`
}

// RedisConfig is shared by the redis store, locker and cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// RemoteConfig configures the remote search/sync client.
type RemoteConfig struct {
	RestoreURL string        `yaml:"restore_url" env:"RESTORE_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Listen:    ":8080",
		AppsDir:   "apps",
		LogLevel:  "info",
		LogFormat: "text",
		PageSize:  10,
		Store: StoreConfig{
			Backend:    "file",
			Dir:        ".casenav/sessions",
			SQLitePath: ".casenav/casenav.db",
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "casenav:",
		},
		Remote: RemoteConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads path (if not empty) over the defaults, then applies the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case "memory", "file", "redis", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		errs = append(errs, fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size: must be positive, got %d", c.PageSize))
	}
	if _, _, err := c.Store.Keys(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Keys decodes the active and fallback encryption keys. A nil active key
// means encryption is disabled.
func (s StoreConfig) Keys() ([]byte, [][]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err := decodeKey(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	var fallbacks [][]byte
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		fallbacks = append(fallbacks, key)
	}
	return active, fallbacks, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
