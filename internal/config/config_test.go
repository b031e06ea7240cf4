package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "casenav.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
listen: ":9090"
page_size: 25
store:
  backend: redis
cache:
  backend: redis
  ttl: 2m
redis:
  addr: redis:6379
  ttl: 1h
remote:
  restore_url: https://remote.example/a/{domain}/restore
`)
	t.Setenv("CASENAV_LISTEN", ":7070")
	t.Setenv("CASENAV_REDIS_DB", "3")
	t.Setenv("CASENAV_STORE_PII_PATTERNS", "national_id,phone")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Listen, "env overrides file")
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "casenav:", cfg.Redis.Prefix, "unset values keep defaults")
	assert.Equal(t, []string{"national_id", "phone"}, cfg.Store.PIIPatterns)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, `
page_size: 0
store:
  backend: postgres
  encryption_key: not-base64!
cache:
  backend: disk
`)
	_, err := Load(path)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"store.backend", "cache.backend", "page_size", "store.encryption_key"} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestStoreKeys(t *testing.T) {
	active := base64.StdEncoding.EncodeToString(make([]byte, 32))
	old := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

	key, fallbacks, err := StoreConfig{EncryptionKey: active, FallbackKeys: []string{old}}.Keys()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	require.Len(t, fallbacks, 1)
	assert.Equal(t, []byte(strings.Repeat("k", 32)), fallbacks[0])

	_, _, err = StoreConfig{EncryptionKey: base64.StdEncoding.EncodeToString([]byte("short"))}.Keys()
	assert.ErrorContains(t, err, "32 bytes")

	key, _, err = StoreConfig{}.Keys()
	require.NoError(t, err)
	assert.Nil(t, key)
}
