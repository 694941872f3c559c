// Package config resolves server settings from STUDIO_* environment
// variables, loading a .env file first when one exists.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the resolved server settings.
type Config struct {
	Env                string
	Addr               string
	DBPath             string
	CSRFKey            []byte
	SlowQueryMs        int
	SlowRequestMs      int
	RateLimit          int // requests per second per client
	BookingHorizonDays int
	TrustedOrigins     []string
}

// IsProduction reports whether the server runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// DSN is the SQLite connection string with WAL, busy timeout and foreign keys.
func (c Config) DSN() string {
	return c.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// Load reads .env (when present) and then the environment.
// POST: returns an error for malformed values or a missing CSRF key in production
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv resolves the settings from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:    normalizeEnv(envOrDefault("STUDIO_ENV", EnvDevelopment)),
		Addr:   envOrDefault("STUDIO_ADDR", ":8080"),
		DBPath: envOrDefault("STUDIO_DB_PATH", "studio.db"),
	}
	if raw := envOrDefault("STUDIO_TRUSTED_ORIGINS", ""); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.TrustedOrigins = append(cfg.TrustedOrigins, origin)
			}
		}
	}

	var err error
	if cfg.SlowQueryMs, err = envInt("STUDIO_SLOW_QUERY_MS", 100); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequestMs, err = envInt("STUDIO_SLOW_REQUEST_MS", 200); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = envInt("STUDIO_RATE_LIMIT", 20); err != nil {
		return Config{}, err
	}
	if cfg.BookingHorizonDays, err = envInt("STUDIO_BOOKING_HORIZON_DAYS", 365); err != nil {
		return Config{}, err
	}
	if cfg.CSRFKey, err = csrfKey(cfg.IsProduction()); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// csrfKey reads STUDIO_CSRF_KEY (hex-encoded, 32 bytes). Outside production a
// random key is generated when the variable is unset.
func csrfKey(production bool) ([]byte, error) {
	if keyHex := os.Getenv("STUDIO_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("STUDIO_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("STUDIO_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("config_event", "event", "random_csrf_key", "hint", "set STUDIO_CSRF_KEY to keep form tokens valid across restarts")
	return key, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt parses a positive integer setting.
func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "development", "local":
		return EnvDevelopment
	case "prod", "production":
		return EnvProduction
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
