package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Store and feed drivers.
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	ServerPort  string
	BaseURL     string
	StoreDriver string
	FeedDriver  string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	JWTExpiry   time.Duration
	LogLevel    string
	LogFormat   string

	// ConnectTimeout bounds dialing and the startup ping of Postgres and Redis.
	ConnectTimeout time.Duration
}

// fileConfig is the optional YAML layer. Empty fields fall through to the
// environment and then to defaults.
type fileConfig struct {
	ServerPort  string `yaml:"server_port"`
	BaseURL     string `yaml:"base_url"`
	StoreDriver string `yaml:"store_driver"`
	FeedDriver  string `yaml:"feed_driver"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	JWTSecret   string `yaml:"jwt_secret"`
	JWTExpiry   string `yaml:"jwt_expiry"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`

	ConnectTimeout string `yaml:"connect_timeout"`
}

// LoadConfig reads .env, then the YAML file named by STATUSBOARD_CONFIG if
// set, then the environment. Environment variables win over the file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var file fileConfig
	if path := os.Getenv("STATUSBOARD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	expiryStr := getEnv("JWT_EXPIRY", file.JWTExpiry, "24h")
	expiry, err := time.ParseDuration(expiryStr)
	if err != nil || expiry <= 0 {
		return nil, errors.New("invalid JWT_EXPIRY format")
	}

	timeout, err := time.ParseDuration(getEnv("CONNECT_TIMEOUT", file.ConnectTimeout, "5s"))
	if err != nil || timeout <= 0 {
		return nil, errors.New("invalid CONNECT_TIMEOUT format")
	}

	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", file.ServerPort, "8080"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", file.BaseURL, "http://localhost:8080"), "/"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", file.StoreDriver, DriverPostgres)),
		FeedDriver:  strings.ToLower(getEnv("FEED_DRIVER", file.FeedDriver, DriverRedis)),
		DatabaseURL: getEnv("DATABASE_URL", file.DatabaseURL, ""),
		RedisURL:    getEnv("REDIS_URL", file.RedisURL, ""),
		JWTSecret:   getEnv("JWT_SECRET", file.JWTSecret, ""),
		JWTExpiry:   expiry,
		LogLevel:    getEnv("LOG_LEVEL", file.LogLevel, "info"),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", file.LogFormat, "text")),

		ConnectTimeout: timeout,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting the selected drivers need is present.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.FeedDriver {
	case DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown FEED_DRIVER %q", c.FeedDriver)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}

	if c.StoreDriver == DriverPostgres && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.NeedsRedis() && c.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}
	if c.RedisURL != "" {
		if _, err := c.RedisOptions(); err != nil {
			return err
		}
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// NeedsRedis reports whether the selected drivers require a Redis connection.
func (c *Config) NeedsRedis() bool {
	return c.StoreDriver == DriverRedis || c.FeedDriver == DriverRedis
}

// RedisOptions parses REDIS_URL and applies the connect timeout and a default
// client name.
func (c *Config) RedisOptions() (*redis.Options, error) {
	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if c.ConnectTimeout > 0 {
		opts.DialTimeout = c.ConnectTimeout
	}
	if opts.ClientName == "" {
		opts.ClientName = "statusboard"
	}
	return opts, nil
}

// Helper: env value, then file value, then default
func getEnv(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}
