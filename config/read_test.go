package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
}

func TestReadConfig_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
database:
  host: db.internal
  dbname: therapy
scheduling:
  touching_is_conflict: false
`)

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "therapy", cfg.Database.DBName)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.Scheduling.TouchingIsConflict)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Authentication.Paseto.AccessTTLMinutes)
}

func TestReadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server:\n  port: 9000\n")
	t.Setenv("MINDBOOK_SERVER_PORT", "9100")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestReadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "database:\n  dbname: fromfile\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MINDBOOK_DATABASE_DBNAME=fromdotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("MINDBOOK_DATABASE_DBNAME") })

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "fromdotenv", cfg.Database.DBName)
}

func TestReadConfig_MissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"no dbname", func(c *Config) { c.Database.DBName = "" }, true},
		{"bad paseto mode", func(c *Config) { c.Authentication.Paseto.Mode = "v2" }, true},
		{"negative workers", func(c *Config) { c.Notification.Workers = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{}
			c.Database.DBName = "mindbook"
			c.Server.Port = 8080
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
