package cli

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/casenav/internal/config"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	apps := t.TempDir()
	data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "suite", "testdata", "caseclaim.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(apps, "caseclaim.yaml"), data, 0o644))

	cfg := config.Default()
	cfg.AppsDir = apps
	cfg.Store.Backend = "memory"
	cfg.Store.Dir = filepath.Join(t.TempDir(), "sessions")
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "casenav.db")
	return cfg
}

func build(t *testing.T, cfg config.Config) *Stack {
	t.Helper()
	st, err := Build(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func installWorker(t *testing.T, st *Stack) *domain.Response {
	t.Helper()
	resp, err := st.Engine.Install(context.Background(), domain.InstallRequest{
		Username: "worker",
		Domain:   "demo",
		AppID:    "caseclaim",
	})
	require.NoError(t, err)
	return resp
}

func TestBuild_Memory(t *testing.T) {
	st := build(t, testConfig(t))

	resp := installWorker(t, st)
	assert.Equal(t, domain.ScreenMenu, resp.Type)
	assert.Nil(t, st.Metrics)

	apps, err := st.Apps.Apps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"caseclaim"}, apps)
}

func TestBuild_FileStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "file"
	st := build(t, cfg)

	resp := installWorker(t, st)

	_, err := os.Stat(filepath.Join(cfg.Store.Dir, resp.SessionID+".json"))
	assert.NoError(t, err)
}

func TestBuild_SQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "sqlite"
	st := build(t, cfg)

	resp := installWorker(t, st)

	s, err := st.Engine.Session(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "worker", s.Username)
}

func TestBuild_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Store.Backend = "redis"
	cfg.Cache.Backend = "redis"
	cfg.Redis.Addr = mr.Addr()
	st := build(t, cfg)

	resp := installWorker(t, st)

	assert.True(t, mr.Exists("casenav:session:"+resp.SessionID))
}

func TestBuild_EncryptedStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "file"
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	st := build(t, cfg)

	resp := installWorker(t, st)

	raw, err := os.ReadFile(filepath.Join(cfg.Store.Dir, resp.SessionID+".json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Case Claim", "breadcrumbs are sealed")

	s, err := st.Engine.Session(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Case Claim"}, s.Breadcrumbs)
}

func TestBuild_Metrics(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics = true
	st := build(t, cfg)

	installWorker(t, st)
	require.NotNil(t, st.Metrics)
	assert.NotNil(t, st.Metrics.Handler())
}

func TestBuild_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.PIIPatterns = []string{"("}
	_, err := Build(cfg, nil)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Store.Backend = "tape"
	_, err = Build(cfg, nil)
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	var b strings.Builder

	logger, err := NewLogger(cfg, &b)
	require.NoError(t, err)
	logger.Info("hello")
	assert.Contains(t, b.String(), "hello")

	cfg.LogLevel = "loud"
	_, err = NewLogger(cfg, &b)
	assert.Error(t, err)
}
