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

var allKeys = []string{
	"GRADLINK_API_URL", "GRADLINK_SESSION_STORE", "GRADLINK_SESSION_DB",
	"GRADLINK_REDIS_ADDR", "GRADLINK_REDIS_PASSWORD", "GRADLINK_TIMEOUT",
	"GRADLINK_LOG_LEVEL", "DEVSERVER_PORT", "DEVSERVER_JWT_SECRET",
}

// cleanEnv blanks every key for the duration of the test. t.Setenv restores
// the old values afterwards, and a blank value reads as unset here.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	// run from an empty dir so a developer's own .env can't leak in
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/", cfg.APIURL)
	assert.Equal(t, StoreSQLite, cfg.SessionStore)
	assert.NotEmpty(t, cfg.SessionDB)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 8000, cfg.DevserverPort)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
}

func TestLoadFromEnv(t *testing.T) {
	cleanEnv(t)
	t.Setenv("GRADLINK_API_URL", "https://gradlink.example.edu/api/")
	t.Setenv("GRADLINK_SESSION_STORE", "Redis")
	t.Setenv("GRADLINK_REDIS_ADDR", "localhost:6379")
	t.Setenv("GRADLINK_TIMEOUT", "5s")
	t.Setenv("GRADLINK_LOG_LEVEL", "debug")
	t.Setenv("DEVSERVER_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://gradlink.example.edu/api/", cfg.APIURL)
	assert.Equal(t, StoreRedis, cfg.SessionStore)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 9000, cfg.DevserverPort)
}

func TestLoadDotEnvFile(t *testing.T) {
	cleanEnv(t)
	// godotenv only fills variables that are absent, so unset them fully
	os.Unsetenv("GRADLINK_API_URL")
	os.Unsetenv("GRADLINK_SESSION_STORE")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"GRADLINK_API_URL=http://campus.test/api/\nGRADLINK_SESSION_STORE=memory\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("GRADLINK_API_URL")
		os.Unsetenv("GRADLINK_SESSION_STORE")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://campus.test/api/", cfg.APIURL)
	assert.Equal(t, StoreMemory, cfg.SessionStore)
}

func TestLoadMissingNamedFile(t *testing.T) {
	cleanEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown store":    {"GRADLINK_SESSION_STORE", "etcd"},
		"bad timeout":      {"GRADLINK_TIMEOUT", "soon"},
		"negative timeout": {"GRADLINK_TIMEOUT", "-1s"},
		"bad level":        {"GRADLINK_LOG_LEVEL", "loud"},
		"bad port":         {"DEVSERVER_PORT", "99999"},
		"redis no addr":    {"GRADLINK_SESSION_STORE", "redis"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
