package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDesktopConfig_Missing(t *testing.T) {
	cfg, err := LoadDesktopConfig(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, cfg.MCPServers)
}

func TestLoadDesktopConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := LoadDesktopConfig(path)
	assert.Error(t, err)
}

func TestRegister_PreservesOtherEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Claude", "claude_desktop_config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{
		"globalShortcut": "Ctrl+Space",
		"mcpServers": {"other": {"command": "/bin/other"}}
	}`), 0o644))

	binary := filepath.Join(dir, BinaryName)
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))

	written, err := Register(Options{ConfigPath: path, BinaryPath: binary, DataDir: dir})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	cfg, err := LoadDesktopConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/bin/other", cfg.MCPServers["other"].Command)
	assert.Equal(t, binary, cfg.MCPServers[ServerName].Command)
	assert.Equal(t, dir, cfg.MCPServers[ServerName].Env["GYNSTAGE_DATA_DIR"])
	assert.JSONEq(t, `"Ctrl+Space"`, string(cfg.extra["globalShortcut"]))

	status, err := GetStatus(path, "/unused")
	require.NoError(t, err)
	assert.True(t, status.Registered)
	assert.Equal(t, dir, status.DataDir)
	assert.Empty(t, status.Issues)
}

func TestGetStatus_NotRegistered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	status, err := GetStatus(path, t.TempDir())
	require.NoError(t, err)
	assert.False(t, status.Registered)
	assert.Len(t, status.Issues, 1)
}

func TestGetStatus_MissingBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	_, err := Register(Options{ConfigPath: path, BinaryPath: filepath.Join(dir, "gone")})
	require.NoError(t, err)

	status, err := GetStatus(path, dir)
	require.NoError(t, err)
	assert.True(t, status.Registered)
	assert.Contains(t, status.Issues[0], "not found")
}
