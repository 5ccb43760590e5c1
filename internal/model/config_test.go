package model_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 5*time.Minute, cfg.PruneInterval())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":9090"
store:
  backend: sqlite
  path: /tmp/taskpilot.db
auth:
  token_secret: shh
  token_issuer: my-issuer
  session_ttl_hours: 48
log:
  level: debug
  development: true
`)

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/taskpilot.db", cfg.Store.Path)
	assert.Equal(t, "shh", cfg.Auth.TokenSecret)
	assert.Equal(t, "my-issuer", cfg.Auth.TokenIssuer)
	assert.Equal(t, 48*time.Hour, cfg.SessionTTL())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":3000"
`)

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.ListenAddr)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
}

func TestLoadConfigSqliteRequiresPath(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: sqlite
`)

	_, err := model.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "store: [not: valid")

	_, err := model.LoadConfig(path)
	assert.Error(t, err)
}
