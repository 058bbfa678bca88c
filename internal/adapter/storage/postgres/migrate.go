package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// migration is a single versioned schema step. Steps run in order inside one
// transaction each and are recorded in schema_migrations, so a restart never
// re-applies them.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "base schema",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				convert_to_usd BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS wallets (
				user_id UUID NOT NULL,
				asset TEXT NOT NULL,
				available NUMERIC(30,10) NOT NULL DEFAULT 0 CHECK (available >= 0),
				frozen NUMERIC(30,10) NOT NULL DEFAULT 0 CHECK (frozen >= 0),
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (user_id, asset)
			)`,
			`CREATE TABLE IF NOT EXISTS fx_rates (
				pair TEXT PRIMARY KEY,
				rate NUMERIC(30,10) NOT NULL CHECK (rate > 0),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS payouts (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				plan_id TEXT NOT NULL,
				currency TEXT NOT NULL,
				amount NUMERIC(30,10) NOT NULL,
				fx_rate NUMERIC(30,10),
				usd_amount NUMERIC(30,10),
				converted BOOLEAN NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_payouts_user_created ON payouts (user_id, created_at DESC)`,
			`CREATE TABLE IF NOT EXISTS investments (
				user_id UUID PRIMARY KEY,
				principal NUMERIC(30,10) NOT NULL DEFAULT 0 CHECK (principal >= 0),
				auto_compound BOOLEAN NOT NULL DEFAULT FALSE,
				window_start TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "seed pegged pairs",
		stmts: []string{
			`INSERT INTO fx_rates (pair, rate) VALUES ('USD-USD', 1), ('USDT-USD', 1)
				ON CONFLICT (pair) DO UPDATE SET rate = 1, updated_at = NOW()`,
		},
	},
	{
		version: 3,
		name:    "sweep scan index",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_investments_auto_compound
				ON investments (user_id) WHERE auto_compound AND window_start IS NOT NULL AND principal > 0`,
		},
	},
}

// Migrate applies all pending schema migrations. It must run to completion
// before any repository or service is constructed.
func Migrate(ctx context.Context, pool Pool, log zerolog.Logger) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	err = pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		for _, stmt := range m.stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				_ = tx.Rollback(ctx)
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}

		log.Info().Int("version", m.version).Str("name", m.name).Msg("schema migration applied")
	}

	return nil
}
