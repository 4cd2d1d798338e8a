package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func clearEnv(t *testing.T) {
	for _, key := range []string{EnvToken, EnvGuild, EnvLogDir} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
token = " abc "
guild = "123"

[spaces]
bucket = "backups"
key = "k"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "123", cfg.Guild)
	assert.Equal(t, "@every 1h", cfg.DriftSchedule)
	assert.Equal(t, "backups", cfg.Spaces.Bucket)
	assert.Equal(t, "k", cfg.Spaces.Key)
	assert.Equal(t, "fra1", cfg.Spaces.Region, "default kept")
	assert.Equal(t, "disma", cfg.Spaces.Prefix)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "token = \"file\"\nlog_dir = \"/var/log/disma\"\n")
	t.Setenv(EnvToken, "env")
	t.Setenv(EnvGuild, "456")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Token)
	assert.Equal(t, "456", cfg.Guild)
	assert.Equal(t, "/var/log/disma", cfg.LogDir)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "tokn = \"typo\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key tokn")

	_, err = Load(writeConfig(t, "token = \n"))
	assert.Error(t, err)
}

func TestMissingDefaultFileIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
