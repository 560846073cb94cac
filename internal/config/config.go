// Package config loads flowgraph settings.
// Priority: env vars > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/flowgraph/internal/logging"
	"github.com/aretw0/flowgraph/pkg/codec"
)

type (
	// Config holds every setting of the CLI and servers.
	Config struct {
		Log   LogConfig   `json:"log"`
		Store StoreConfig `json:"store"`
		HTTP  HTTPConfig  `json:"http"`
	}

	LogConfig struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	}

	// StoreConfig selects the flow store. Dir and Format apply to the
	// file store, Redis to the redis store.
	StoreConfig struct {
		Kind   string      `json:"kind"`
		Dir    string      `json:"dir"`
		Format string      `json:"format"`
		Redis  RedisConfig `json:"redis"`
	}

	RedisConfig struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
		Prefix   string `json:"prefix"`
		// TTL is a Go duration; empty or "0" keeps flows forever.
		TTL string `json:"ttl"`
	}

	HTTPConfig struct {
		Addr string `json:"addr"`
	}
)

const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"

	DefaultHTTPAddr      = ":8080"
	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisPrefix   = "flowgraph:flow:"
	DefaultStoreDir      = ".flowgraph/flows"
)

var (
	ErrInvalidStoreKind = errors.New("invalid store kind")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidFormat    = errors.New("invalid store format")
	ErrInvalidRedisTTL  = errors.New("invalid redis ttl")
	ErrMissingRedisAddr = errors.New("redis store requires an address")
	ErrMissingHTTPAddr  = errors.New("http address cannot be empty")
)

// NewDefaultConfig returns the built-in defaults: an in-memory store and
// text logs at info.
func NewDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: string(logging.FormatText)},
		Store: StoreConfig{
			Kind:   StoreMemory,
			Dir:    DefaultStoreDir,
			Format: string(codec.JSON),
			Redis: RedisConfig{
				Addr:   DefaultRedisEndpoint,
				Prefix: DefaultRedisPrefix,
			},
		},
		HTTP: HTTPConfig{Addr: DefaultHTTPAddr},
	}
}

// Load reads defaults, then the file at path (JSON or YAML by extension;
// an empty path or missing file is ignored), then the environment.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the document at path over c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	f, err := codec.FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := codec.Decode(data, f, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv populates configuration values from FLOWGRAPH_* variables.
// Returns an error if a numeric variable cannot be parsed.
func (c *Config) LoadFromEnv() error {
	setString(&c.Log.Level, "FLOWGRAPH_LOG_LEVEL")
	setString(&c.Log.Format, "FLOWGRAPH_LOG_FORMAT")
	setString(&c.Store.Kind, "FLOWGRAPH_STORE")
	setString(&c.Store.Dir, "FLOWGRAPH_STORE_DIR")
	setString(&c.Store.Format, "FLOWGRAPH_STORE_FORMAT")
	setString(&c.Store.Redis.Addr, "FLOWGRAPH_REDIS_ADDR")
	setString(&c.Store.Redis.Password, "FLOWGRAPH_REDIS_PASSWORD")
	setString(&c.Store.Redis.Prefix, "FLOWGRAPH_REDIS_PREFIX")
	setString(&c.Store.Redis.TTL, "FLOWGRAPH_REDIS_TTL")
	setString(&c.HTTP.Addr, "FLOWGRAPH_HTTP_ADDR")

	if v := os.Getenv("FLOWGRAPH_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FLOWGRAPH_REDIS_DB: %w", err)
		}
		c.Store.Redis.DB = db
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	if c.HTTP.Addr == "" {
		return ErrMissingHTTPAddr
	}

	switch c.Store.Kind {
	case StoreMemory:
	case StoreFile:
		if _, err := codec.ParseFormat(c.Store.Format); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Store.Format)
		}
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return ErrMissingRedisAddr
		}
		if _, err := c.Store.Redis.TTLDuration(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStoreKind, c.Store.Kind)
	}
	return nil
}

// TTLDuration parses TTL. Empty means no expiry.
func (r RedisConfig) TTLDuration() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRedisTTL, r.TTL)
	}
	return d, nil
}
