package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"gocrack/domain/core"
	"gocrack/domain/run"
	"gocrack/ports"

	"github.com/jmoiron/sqlx"
)

const runColumns = `id, source, seed, days, measures, iterations, max_bit, bit_cycles, t0, k,
	width, restarts, rebase, fixed_baseline, initial_energy, final_energy, plain_energy, key_match,
	mask, fingerprint, created_at`

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// SaveRun inserts a finished run; saving the same ID twice overwrites the outcome
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, rec *run.Record) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO crack_runs (`+runColumns+`)
		VALUES (:id, :source, :seed, :days, :measures, :iterations, :max_bit, :bit_cycles, :t0, :k,
			:width, :restarts, :rebase, :fixed_baseline, :initial_energy, :final_energy, :plain_energy, :key_match,
			:mask, :fingerprint, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			final_energy = EXCLUDED.final_energy,
			plain_energy = EXCLUDED.plain_energy,
			key_match = EXCLUDED.key_match,
			mask = EXCLUDED.mask
	`, rec)
	return err
}

// GetRun retrieves a run by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	var rec run.Record
	err := r.db.GetContext(ctx, &rec, `SELECT `+runColumns+` FROM crack_runs WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRuns returns the most recent runs first
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]*run.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []*run.Record
	err := r.db.SelectContext(ctx, &recs, `
		SELECT `+runColumns+`
		FROM crack_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return recs, nil
}
