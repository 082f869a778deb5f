package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booking.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=from-config-file\nSERVER_PORT=9191\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-config-file", cfg.App.Name)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadConfig_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))

	_, err := loadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_Default(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "event-booking", cfg.App.Name)
}
