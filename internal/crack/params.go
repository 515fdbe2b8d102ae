package crack

import (
	"math"

	"gocrack/domain/core"
)

// Params are the fixed tunables of one annealing run
type Params struct {
	Iterations int     // outer steps (ITERS)
	MaxBit     int     // highest single bit; proposals on MaxBit flip the whole upper group
	BitCycles  int     // passes per bit and iteration; each iteration runs BitCycles*MaxBit+1 passes
	T0         float64 // initial temperature scale
	K          float64 // schedule steepness
	Width      int     // sample word size used by the estimator

	// FixedBaseline compares every proposal in a pass against the energy the
	// pass started from instead of the last accepted energy.
	FixedBaseline bool

	// FullRecompute rebuilds the whole decrypted matrix and its dispersion for
	// each proposal. Slow; kept as the reference path.
	FullRecompute bool
}

// DefaultParams returns the stock run: 30 iterations over bits 0..8 with 6
// cycles per bit, T0 = 30 and K = 10.
func DefaultParams() Params {
	return Params{
		Iterations: 30,
		MaxBit:     8,
		BitCycles:  6,
		T0:         30,
		K:          10,
		Width:      MaxWidth,
	}
}

// PassesPerIteration is the number of bit-group passes in one outer step
func (p Params) PassesPerIteration() int {
	return p.BitCycles*p.MaxBit + 1
}

// Schedule returns the temperature curve for these parameters
func (p Params) Schedule() Schedule {
	return Schedule{T0: p.T0, K: p.K, Iterations: p.Iterations}
}

// Validate checks the parameters before a run
func (p Params) Validate() error {
	if p.Iterations < 1 {
		return core.NewParameterError("iterations", "must be at least 1")
	}
	if p.Width < 1 || p.Width > MaxWidth {
		return core.NewParameterError("width", "must be between 1 and 32")
	}
	if p.MaxBit < 0 || p.MaxBit >= p.Width {
		return core.NewParameterError("max bit", "must be below the sample width")
	}
	if p.BitCycles < 0 {
		return core.NewParameterError("bit cycles", "must not be negative")
	}
	if p.T0 < 0 || math.IsNaN(p.T0) || math.IsInf(p.T0, 0) {
		return core.NewParameterError("T0", "must be a finite non-negative number")
	}
	if math.IsNaN(p.K) || math.IsInf(p.K, 0) {
		return core.NewParameterError("K", "must be finite")
	}
	return nil
}
