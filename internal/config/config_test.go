package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowgraph/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store.Kind)
	assert.Equal(t, config.DefaultHTTPAddr, cfg.HTTP.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
store:
  kind: redis
  redis:
    addr: redis:6379
    ttl: 1h
`), 0644))

	t.Setenv("FLOWGRAPH_HTTP_ADDR", ":9999")
	t.Setenv("FLOWGRAPH_REDIS_DB", "3")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep defaults")
	assert.Equal(t, config.StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, config.DefaultRedisPrefix, cfg.Store.Redis.Prefix)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)

	ttl, err := cfg.Store.Redis.TTLDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowgraph.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store":{"kind":"file","dir":"/tmp/flows","format":"yaml"}}`), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.StoreFile, cfg.Store.Kind)
	assert.Equal(t, "/tmp/flows", cfg.Store.Dir)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log: [unclosed"), 0644))
	_, err := config.Load(bad)
	assert.Error(t, err)

	noExt := filepath.Join(dir, "flowgraph")
	require.NoError(t, os.WriteFile(noExt, []byte("{}"), 0644))
	_, err = config.Load(noExt)
	assert.Error(t, err)

	t.Setenv("FLOWGRAPH_REDIS_DB", "three")
	_, err = config.Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"Store Kind", func(c *config.Config) { c.Store.Kind = "s3" }, config.ErrInvalidStoreKind},
		{"Log Level", func(c *config.Config) { c.Log.Level = "loud" }, config.ErrInvalidLogLevel},
		{"Log Format", func(c *config.Config) { c.Log.Format = "xml" }, config.ErrInvalidLogFormat},
		{"File Format", func(c *config.Config) { c.Store.Kind = config.StoreFile; c.Store.Format = "toml" }, config.ErrInvalidFormat},
		{"Redis Addr", func(c *config.Config) { c.Store.Kind = config.StoreRedis; c.Store.Redis.Addr = "" }, config.ErrMissingRedisAddr},
		{"Redis TTL", func(c *config.Config) { c.Store.Kind = config.StoreRedis; c.Store.Redis.TTL = "soon" }, config.ErrInvalidRedisTTL},
		{"Negative TTL", func(c *config.Config) { c.Store.Kind = config.StoreRedis; c.Store.Redis.TTL = "-1s" }, config.ErrInvalidRedisTTL},
		{"HTTP Addr", func(c *config.Config) { c.HTTP.Addr = "" }, config.ErrMissingHTTPAddr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}
