// Package config loads server settings from defaults, an optional config
// file in the working directory, and the environment, in that order.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds runtime settings for the API server.
type Config struct {
	Port              int
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUser         string
	AdminPassword     string
	AdminPasswordHash string
	Store             string
	SeedExpenses      bool
	LogLevel          string
}

var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Load builds a Config. Keys map to upper-case environment variables,
// e.g. "jwt_secret" is read from JWT_SECRET.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("port", 3000)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", time.Hour)
	v.SetDefault("admin_user", "fred")
	v.SetDefault("admin_password", "")
	v.SetDefault("admin_password_hash", "")
	v.SetDefault("store", StoreMemory)
	v.SetDefault("seed_expenses", true)
	v.SetDefault("log_level", "info")

	v.AddConfigPath("./")
	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	cfg := Config{
		Port:              v.GetInt("port"),
		JWTSecret:         v.GetString("jwt_secret"),
		TokenTTL:          v.GetDuration("token_ttl"),
		AdminUser:         strings.TrimSpace(v.GetString("admin_user")),
		AdminPassword:     v.GetString("admin_password"),
		AdminPasswordHash: v.GetString("admin_password_hash"),
		Store:             strings.ToLower(v.GetString("store")),
		SeedExpenses:      v.GetBool("seed_expenses"),
		LogLevel:          strings.ToLower(v.GetString("log_level")),
	}
	return cfg, cfg.Validate()
}

// Validate checks that the settings can start a server.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port >= 65536 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.AdminUser == "" {
		return errors.New("ADMIN_USER cannot be empty")
	}
	if c.AdminPasswordHash == "" && c.AdminPassword == "" {
		return errors.New("one of ADMIN_PASSWORD_HASH or ADMIN_PASSWORD is required")
	}
	if c.Store != StoreMemory && c.Store != StoreSQLite {
		return fmt.Errorf("invalid store %q: must be %s or %s", c.Store, StoreMemory, StoreSQLite)
	}
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", c.LogLevel, validLogLevelNames())
	}
	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	if l, ok := validLogLevels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

// SigningKey returns the configured JWT secret, or a random 32-byte key
// when none is set. generated reports which one was returned; tokens signed
// with a random key do not survive a restart.
func (c Config) SigningKey() (key []byte, generated bool, err error) {
	if c.JWTSecret != "" {
		return []byte(c.JWTSecret), false, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, false, fmt.Errorf("generate JWT key: %w", err)
	}
	return b, true, nil
}

func validLogLevelNames() string {
	names := make([]string, 0, len(validLogLevels))
	for k := range validLogLevels {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}
