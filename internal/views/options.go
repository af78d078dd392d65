package views

import (
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultBaseURL        = "http://localhost:8080"
)

type viewConfig struct {
	logger            *logrus.Entry
	now               func() time.Time
	requestTimeout    time.Duration
	baseURL           string
	refetchAfterWrite bool
}

func defaultViewConfig() viewConfig {
	return viewConfig{
		logger:            logrus.NewEntry(logrus.StandardLogger()),
		now:               time.Now,
		requestTimeout:    defaultRequestTimeout,
		baseURL:           defaultBaseURL,
		refetchAfterWrite: true,
	}
}

// Option configures a view at construction.
type Option func(*viewConfig) error

func WithLogger(logger *logrus.Entry) Option {
	return func(cfg *viewConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock replaces the time source used to stamp writes.
func WithClock(now func() time.Time) Option {
	return func(cfg *viewConfig) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.now = now
		return nil
	}
}

// WithRequestTimeout bounds every individual store call.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *viewConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithBaseURL sets the origin used to build shareable profile URLs.
func WithBaseURL(baseURL string) Option {
	return func(cfg *viewConfig) error {
		if baseURL == "" {
			return errors.New("base URL cannot be empty")
		}
		cfg.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithRefetchAfterWrite controls whether the roster re-reads the store right
// after its own successful write instead of waiting for the change feed.
func WithRefetchAfterWrite(enabled bool) Option {
	return func(cfg *viewConfig) error {
		cfg.refetchAfterWrite = enabled
		return nil
	}
}

func buildConfig(opts []Option) (viewConfig, error) {
	cfg := defaultViewConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return viewConfig{}, err
		}
	}
	return cfg, nil
}
