package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8765", cfg.Addr())
	assert.Equal(t, int64(1000), cfg.Admission.MaxConnections)
	assert.Equal(t, int64(1), cfg.Admission.MaxConnectionsPerClient)
	assert.Equal(t, "chatgate:connections", cfg.Redis.Key)
	assert.Equal(t, 1<<20, cfg.Limits.MaxFieldBytes)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CHATGATE_SERVER_PORT", "9100")
	t.Setenv("CHATGATE_ADMISSION_MAX_CONNECTIONS", "4")
	t.Setenv("CHATGATE_REDIS_ADDR", "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, int64(4), cfg.Admission.MaxConnections)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadFileOverridesDefaultsEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9200
admission:
  max_connections: 7
`), 0o644))
	t.Setenv("CHATGATE_SERVER_PORT", "9300")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Server.Port, "env wins over file")
	assert.Equal(t, int64(7), cfg.Admission.MaxConnections, "file wins over default")
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsNonsense(t *testing.T) {
	t.Setenv("CHATGATE_ADMISSION_MAX_CONNECTIONS", "0")
	_, err := Load("")
	assert.ErrorContains(t, err, "max_connections")
}
