package migration

import (
	"context"

	"gocrack/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every step is
// idempotent, so Run is safe on every start.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createCrackRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create crack_runs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createCrackRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS crack_runs (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			seed BIGINT NOT NULL,
			days INTEGER NOT NULL,
			measures INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			max_bit INTEGER NOT NULL,
			bit_cycles INTEGER NOT NULL,
			t0 DOUBLE PRECISION NOT NULL,
			k DOUBLE PRECISION NOT NULL,
			width INTEGER NOT NULL DEFAULT 32,
			restarts INTEGER NOT NULL DEFAULT 1,
			rebase BOOLEAN NOT NULL DEFAULT true,
			fixed_baseline BOOLEAN NOT NULL DEFAULT false,
			initial_energy DOUBLE PRECISION NOT NULL,
			final_energy DOUBLE PRECISION NOT NULL,
			plain_energy DOUBLE PRECISION,
			key_match DOUBLE PRECISION,
			mask TEXT NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_crack_runs_created_at ON crack_runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_crack_runs_fingerprint ON crack_runs(fingerprint);
	`)
	return err
}
