package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects with opts and fails unless a ping answers within
// pingTimeout.
func NewRedisClient(ctx context.Context, opts *redis.Options, pingTimeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging redis at %s: %w", opts.Addr, err)
	}

	logrus.WithFields(logrus.Fields{
		"addr":      opts.Addr,
		"db":        opts.DB,
		"client":    opts.ClientName,
		"pool_size": client.Options().PoolSize,
	}).Info("redis client ready")

	return client, nil
}
