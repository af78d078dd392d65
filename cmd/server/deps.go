package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/statusboard/internal/changefeed"
	"github.com/prudhvinik1/statusboard/internal/config"
	"github.com/prudhvinik1/statusboard/internal/database"
	"github.com/prudhvinik1/statusboard/internal/repositories"
	"github.com/prudhvinik1/statusboard/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type deps struct {
	pool     *pgxpool.Pool
	redis    *redis.Client
	auth     *services.AuthService
	statuses *services.StatusService
}

// buildDeps opens the connections the configured drivers need and wires the
// services. Accounts live in Postgres and sessions in Redis when those are
// configured, in memory otherwise.
func buildDeps(ctx context.Context, cfg *config.Config) (*deps, func(), error) {
	d := &deps{}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		pool, err := database.NewPostgresPool(connectCtx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		d.pool = pool
		closers = append(closers, pool.Close)
	}

	if cfg.RedisURL != "" {
		opts, err := cfg.RedisOptions()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		client, err := database.NewRedisClient(ctx, opts, cfg.ConnectTimeout)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		d.redis = client
		closers = append(closers, func() { _ = client.Close() })
	}

	var records repositories.StatusRecordRepository
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		records = repositories.NewPostgresStatusRecordRepository(d.pool)
	case config.DriverRedis:
		records = repositories.NewRedisStatusRecordRepository(d.redis)
	default:
		records = repositories.NewMemoryStatusRecordRepository()
	}

	var feed changefeed.Feed
	switch cfg.FeedDriver {
	case config.DriverRedis:
		feed = changefeed.NewRedisFeed(d.redis, changefeed.DefaultChannel)
	default:
		feed = changefeed.NewMemoryFeed()
		if cfg.StoreDriver != config.DriverMemory {
			logrus.Warn("memory change feed with a shared store: other instances' writes will not be pushed")
		}
	}

	var accounts repositories.AccountRepository = repositories.NewMemoryAccountRepository()
	if d.pool != nil {
		accounts = repositories.NewPostgresAccountRepository(d.pool)
	}
	var sessions repositories.SessionRepository = repositories.NewMemorySessionRepository()
	if d.redis != nil {
		sessions = repositories.NewRedisSessionRepository(d.redis)
	}

	d.auth = services.NewAuthService(accounts, sessions, cfg.JWTSecret, cfg.JWTExpiry)
	d.statuses = services.NewStatusService(records, feed)
	return d, cleanup, nil
}
