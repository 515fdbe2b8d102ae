package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// Stream creates a deterministic RNG stream for one search of a run.
	// The same stage, key and base seed always receive the same sequence, so a
	// run can be replayed from its seed alone.
	Stream(ctx context.Context, stageName, key string, baseSeed uint64) (*rand.Rand, error)
}
