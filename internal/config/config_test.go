package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pakfs.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadFull(t *testing.T) {
	p := writeConfig(t, `
logging: Debug
search_paths:
  - path: assets
    monitor: true
  - path: fallback
archives:
  - base.pak
  - patch.pak
ignores:
  - "*.bak"
max_mem_files: 128
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.LoggingEnabled())
	assert.Equal(t, "debug", cfg.LogLevel())
	require.Len(t, cfg.SearchPaths, 2)
	assert.True(t, cfg.SearchPaths[0].Monitor)
	assert.False(t, cfg.SearchPaths[1].Monitor)
	assert.True(t, cfg.Monitoring())
	assert.Equal(t, []string{"base.pak", "patch.pak"}, cfg.Archives)
	assert.Equal(t, []string{"*.bak"}, cfg.Ignores)
	assert.Equal(t, 128, cfg.MaxMemFiles)
	assert.Zero(t, cfg.MaxDiskFiles)
}

func TestLoadMissingReturnsNil(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadMalformed(t *testing.T) {
	p := writeConfig(t, "search_paths: {not a list")
	_, err := Load(p)
	assert.Error(t, err)
}

func TestDefaultsApplied(t *testing.T) {
	p := writeConfig(t, "logging: none\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.False(t, cfg.LoggingEnabled())
	assert.False(t, cfg.Monitoring())
	assert.Contains(t, cfg.Ignores, "*.swp")
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv("PAKFS_CONFIG", "/etc/pakfs/custom.yaml")
	assert.Equal(t, "/etc/pakfs/custom.yaml", DefaultPath())

	t.Setenv("PAKFS_CONFIG", "")
	assert.Equal(t, "pakfs.yaml", DefaultPath())
}
