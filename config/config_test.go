package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Workflow.Transactional)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "Asia/Jakarta", cfg.Report.Timezone)
}

func Test_Load_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "perpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  path: /tmp/perpus.db
workflow:
  transactional: false
report:
  cache_ttl: 30s
`), 0o600))
	t.Setenv("PERPUS_HTTP_ADDR", ":9090")
	t.Setenv("PERPUS_REDIS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/perpus.db", cfg.Database.Path)
	assert.False(t, cfg.Workflow.Transactional)
	assert.Equal(t, 30*time.Second, cfg.Report.CacheTTL)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.True(t, cfg.Redis.Enabled)
}

func Test_Load_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
