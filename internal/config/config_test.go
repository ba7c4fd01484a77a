package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "shproto-server", cfg.App.Name)
	assert.Equal(t, ":7000", cfg.TCP.Addr)
	assert.Equal(t, 256, cfg.Protocol.MaxFrameBytes)
	assert.Equal(t, 5*time.Minute, cfg.Session.HeartbeatTimeout)
	assert.False(t, cfg.Database.Enable)
	assert.False(t, cfg.Redis.Enable)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	content := []byte(`
tcp:
  addr: ":9100"
protocol:
  maxFrameBytes: 64
session:
  heartbeatTimeout: 30s
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.TCP.Addr)
	assert.Equal(t, 64, cfg.Protocol.MaxFrameBytes)
	assert.Equal(t, 30*time.Second, cfg.Session.HeartbeatTimeout)
	// 未覆盖的键保留默认值
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}
