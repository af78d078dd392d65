package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"STATUSBOARD_CONFIG", "SERVER_PORT", "BASE_URL", "STORE_DRIVER", "FEED_DRIVER",
	"DATABASE_URL", "REDIS_URL", "JWT_SECRET", "JWT_EXPIRY", "LOG_LEVEL", "LOG_FORMAT",
	"CONNECT_TIMEOUT",
}

// clearEnv blanks every config variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/statusboard")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, DriverRedis, cfg.FeedDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
}

func TestLoadConfig_MemoryDriversNeedOnlySecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("FEED_DRIVER", "MEMORY")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.FeedDriver)
	assert.False(t, cfg.NeedsRedis())
}

func TestLoadConfig_RequiredByDriver(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgres store without database url",
			env:     map[string]string{"FEED_DRIVER": "memory", "JWT_SECRET": "s"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "redis store without redis url",
			env:     map[string]string{"STORE_DRIVER": "redis", "FEED_DRIVER": "memory", "JWT_SECRET": "s"},
			wantErr: "REDIS_URL is required",
		},
		{
			name:    "redis feed without redis url",
			env:     map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET": "s"},
			wantErr: "REDIS_URL is required",
		},
		{
			name:    "missing secret",
			env:     map[string]string{"STORE_DRIVER": "memory", "FEED_DRIVER": "memory"},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "unknown store driver",
			env:     map[string]string{"STORE_DRIVER": "mongo", "JWT_SECRET": "s"},
			wantErr: `unknown STORE_DRIVER "mongo"`,
		},
		{
			name:    "bad expiry",
			env:     map[string]string{"STORE_DRIVER": "memory", "FEED_DRIVER": "memory", "JWT_SECRET": "s", "JWT_EXPIRY": "soon"},
			wantErr: "invalid JWT_EXPIRY format",
		},
		{
			name:    "unparseable redis url",
			env:     map[string]string{"STORE_DRIVER": "memory", "REDIS_URL": "http://localhost:6379", "JWT_SECRET": "s"},
			wantErr: "invalid REDIS_URL",
		},
		{
			name:    "bad connect timeout",
			env:     map[string]string{"STORE_DRIVER": "memory", "FEED_DRIVER": "memory", "JWT_SECRET": "s", "CONNECT_TIMEOUT": "-1s"},
			wantErr: "invalid CONNECT_TIMEOUT format",
		},
		{
			name:    "bad log format",
			env:     map[string]string{"STORE_DRIVER": "memory", "FEED_DRIVER": "memory", "JWT_SECRET": "s", "LOG_FORMAT": "xml"},
			wantErr: `unknown LOG_FORMAT "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_YAMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "statusboard.yaml")
	content := `
server_port: "9090"
base_url: https://status.example.com/
store_driver: memory
feed_driver: memory
jwt_secret: from-file
jwt_expiry: 2h
log_format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("STATUSBOARD_CONFIG", path)
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.ServerPort, "environment wins over the file")
	assert.Equal(t, "https://status.example.com", cfg.BaseURL)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("STATUSBOARD_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_RedisOptions(t *testing.T) {
	cfg := &Config{RedisURL: "redis://:pw@cache.internal:6380/2", ConnectTimeout: 3 * time.Second}

	opts, err := cfg.RedisOptions()

	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.Equal(t, "statusboard", opts.ClientName)
}
