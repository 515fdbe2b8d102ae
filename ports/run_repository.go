package ports

import (
	"context"

	"gocrack/domain/core"
	"gocrack/domain/run"
)

// RunRepository stores finished recovery runs
type RunRepository interface {
	SaveRun(ctx context.Context, rec *run.Record) error
	GetRun(ctx context.Context, id core.RunID) (*run.Record, error)
	ListRuns(ctx context.Context, limit int) ([]*run.Record, error)
}
