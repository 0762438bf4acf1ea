package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Statements are idempotent so the bootstrap can run on every start.
// The unique indexes on email and phone are the authoritative guard against
// duplicate identities; the application-level existence check before insert
// is only a fast path.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT,
		phone         TEXT,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_phone_key UNIQUE (phone),
		CONSTRAINT users_email_or_phone CHECK (email IS NOT NULL OR phone IS NOT NULL)
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		territory        TEXT NOT NULL DEFAULT '',
		distance         DOUBLE PRECISION NOT NULL DEFAULT 0,
		time             INTEGER NOT NULL DEFAULT 0,
		avg_speed        DOUBLE PRECISION,
		avg_pace         DOUBLE PRECISION,
		max_speed        DOUBLE PRECISION,
		calories         INTEGER,
		avg_heart_rate   INTEGER,
		heart_rate_zone1 INTEGER,
		heart_rate_zone2 INTEGER,
		heart_rate_zone3 INTEGER,
		heart_rate_zone4 INTEGER,
		heart_rate_zone5 INTEGER,
		positions        JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS runs_user_id_date_idx ON runs (user_id, date DESC)`,
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
