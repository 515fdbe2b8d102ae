package ports

import (
	"context"

	"gocrack/domain/series"
)

// MatrixSourcePort reads a sample matrix from a named location
type MatrixSourcePort interface {
	ReadMatrix(ctx context.Context, path string) (*series.Matrix, error)
}

// MatrixSinkPort writes a sample matrix to a named location
type MatrixSinkPort interface {
	WriteMatrix(ctx context.Context, path string, m *series.Matrix) error
}
