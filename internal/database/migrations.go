package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type migration struct {
	name string
	sql  string
}

// Statements are idempotent so Migrate can run on every deploy.
var migrations = []migration{
	{
		name: "create accounts",
		sql: `CREATE TABLE IF NOT EXISTS accounts (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		name: "create status_records",
		sql: `CREATE TABLE IF NOT EXISTS status_records (
			id             TEXT PRIMARY KEY,
			status         TEXT NOT NULL DEFAULT 'available',
			custom_message TEXT NOT NULL DEFAULT '',
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		name: "index status_records by updated_at",
		sql:  `CREATE INDEX IF NOT EXISTS status_records_updated_at_idx ON status_records (updated_at DESC, id)`,
	},
}

// Migrate applies the schema in a single transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, m := range migrations {
			if _, err := tx.Exec(ctx, m.sql); err != nil {
				return fmt.Errorf("failed to apply migration %q: %w", m.name, err)
			}
			logrus.WithField("migration", m.name).Debug("migration applied")
		}
		return nil
	})
}
