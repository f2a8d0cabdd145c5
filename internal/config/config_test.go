package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so no stray config file is read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	// viper ignores empty variables, so this hides anything set on the host
	for _, k := range []string{"PORT", "JWT_SECRET", "TOKEN_TTL", "ADMIN_USER", "ADMIN_PASSWORD",
		"ADMIN_PASSWORD_HASH", "STORE", "SEED_EXPENSES", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("ADMIN_PASSWORD", "password")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.ListenAddr())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "fred", cfg.AdminUser)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.True(t, cfg.SeedExpenses)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("ADMIN_USER", "testuser")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuu")
	t.Setenv("STORE", "SQLite")
	t.Setenv("SEED_EXPENSES", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "testuser", cfg.AdminUser)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.False(t, cfg.SeedExpenses)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	content := "port: 4000\nadmin_user: alice\nadmin_password: pw\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	// environment wins over the file
	t.Setenv("ADMIN_USER", "bob")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "bob", cfg.AdminUser)
	assert.Equal(t, "pw", cfg.AdminPassword)
}

func TestLoad_MissingPassword(t *testing.T) {
	isolate(t)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 3000, AdminUser: "fred", AdminPassword: "x", Store: StoreMemory, LogLevel: "info"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, "invalid port"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "invalid port"},
		{"empty user", func(c *Config) { c.AdminUser = "" }, "ADMIN_USER"},
		{"unknown store", func(c *Config) { c.Store = "postgres" }, "invalid store"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSigningKey(t *testing.T) {
	key, generated, err := Config{JWTSecret: "abc"}.SigningKey()
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, []byte("abc"), key)

	a, generated, err := Config{}.SigningKey()
	require.NoError(t, err)
	assert.True(t, generated)
	assert.Len(t, a, 32)

	b, _, err := Config{}.SigningKey()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
