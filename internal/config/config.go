// Package config reads GradLink settings from the environment.
//
// SOURCES, highest priority first:
//  1. real environment variables
//  2. a .env file (or the files passed to Load), via godotenv
//  3. the defaults below
//
// godotenv.Load never overrides a variable that is already set, so a value
// exported in the shell always beats the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/gradlink/internal/apiclient"
)

// StoreKind selects the session storage backend.
type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreRedis  StoreKind = "redis"
	StoreMemory StoreKind = "memory"
)

// DevJWTSecret is used by the devserver when DEVSERVER_JWT_SECRET is unset.
// It is public, so tokens signed with it prove nothing.
const DevJWTSecret = "gradlink-devserver-insecure-secret"

type Config struct {
	APIURL        string        // GRADLINK_API_URL
	SessionStore  StoreKind     // GRADLINK_SESSION_STORE
	SessionDB     string        // GRADLINK_SESSION_DB (sqlite file)
	RedisAddr     string        // GRADLINK_REDIS_ADDR
	RedisPassword string        // GRADLINK_REDIS_PASSWORD
	Timeout       time.Duration // GRADLINK_TIMEOUT, Go duration syntax
	LogLevel      slog.Level    // GRADLINK_LOG_LEVEL: debug|info|warn|error

	DevserverPort int    // DEVSERVER_PORT
	JWTSecret     string // DEVSERVER_JWT_SECRET
}

// Load reads the configuration. With no arguments it loads ./.env when
// present; named files must exist.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: reading .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", strings.Join(envFiles, ", "), err)
	}

	cfg := Config{
		APIURL:        getenv("GRADLINK_API_URL", apiclient.DefaultBaseURL),
		SessionStore:  StoreKind(strings.ToLower(getenv("GRADLINK_SESSION_STORE", string(StoreSQLite)))),
		SessionDB:     getenv("GRADLINK_SESSION_DB", defaultSessionDB()),
		RedisAddr:     os.Getenv("GRADLINK_REDIS_ADDR"),
		RedisPassword: os.Getenv("GRADLINK_REDIS_PASSWORD"),
		Timeout:       30 * time.Second,
		LogLevel:      slog.LevelInfo,
		DevserverPort: 8000,
		JWTSecret:     getenv("DEVSERVER_JWT_SECRET", DevJWTSecret),
	}

	switch cfg.SessionStore {
	case StoreSQLite, StoreMemory:
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return Config{}, errors.New("config: GRADLINK_SESSION_STORE=redis needs GRADLINK_REDIS_ADDR")
		}
	default:
		return Config{}, fmt.Errorf("config: GRADLINK_SESSION_STORE must be sqlite, redis or memory, got %q", cfg.SessionStore)
	}

	if v := os.Getenv("GRADLINK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("config: invalid GRADLINK_TIMEOUT %q", v)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv("GRADLINK_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("config: invalid GRADLINK_LOG_LEVEL %q", v)
		}
	}

	if v := os.Getenv("DEVSERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("config: invalid DEVSERVER_PORT %q", v)
		}
		cfg.DevserverPort = port
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// defaultSessionDB is ~/.config/gradlink/session.db on Linux, the
// platform equivalent elsewhere, or ./gradlink-session.db as a last resort.
func defaultSessionDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gradlink-session.db"
	}
	return filepath.Join(dir, "gradlink", "session.db")
}
