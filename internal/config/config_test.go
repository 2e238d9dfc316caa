package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
env: prod
api:
  base_url: "https://api.example.com/api/v1"
  assets_url: "https://api.example.com"
  timeout: 20s
  rate_limit: 5
  rate_burst: 10
  page_size: 25
http_server:
  addresshttp: ":9090"
  timeouthttp: 30s
  idle_timeout: 90s
redis_connection:
  addressredis: "localhost:6379"
  db: 2
cache:
  enabled: true
  ttl: 1m
  key_prefix: "console:"
  stale_time: 2m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "https://api.example.com/api/v1", cfg.BaseURL)
	assert.Equal(t, "https://api.example.com", cfg.AssetsURL)
	assert.Equal(t, 20*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5.0, cfg.RateLimit)
	assert.Equal(t, 10, cfg.RateBurst)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, ":9090", cfg.AddressHTTP)
	assert.Equal(t, 30*time.Second, cfg.TimeoutHTTP)
	assert.Equal(t, 90*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "localhost:6379", cfg.AddressRedis)
	assert.Equal(t, 2, cfg.DB)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.TTL)
	assert.Equal(t, "console:", cfg.KeyPrefix)
	assert.Equal(t, 2*time.Minute, cfg.StaleTime)
}

func TestLoad_DefaultValues(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "http://10.10.7.65:5000/api/v1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ":8080", cfg.AddressHTTP)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 5, cfg.RateBurst)
	assert.Equal(t, 0.0, cfg.RateLimit)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "admin:", cfg.KeyPrefix)
	assert.Equal(t, time.Minute, cfg.StaleTime)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_MissingBaseURL(t *testing.T) {
	path := writeConfig(t, "env: local\n")

	cfg, err := Load(path)
	assert.Nil(t, cfg)
	assert.Error(t, err)
}
