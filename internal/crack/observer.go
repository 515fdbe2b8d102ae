package crack

import (
	"gocrack/domain/series"
)

// PassResult summarises one bit-group pass over all columns
type PassResult struct {
	Iteration   int
	Bit         int
	Toggle      uint32
	Temperature float64
	Before      float64 // energy when the pass started
	After       float64 // energy after the sweep
	Accepted    int     // columns whose toggle was kept
}

// Change is the percentage drop in energy over the pass; negative when the
// pass heated the candidate.
func (p PassResult) Change() float64 {
	return relativeChange(p.Before, p.After)
}

// Heated reports whether the pass ended above its starting energy
func (p PassResult) Heated() bool {
	return p.Before < p.After
}

// IterationResult is emitted after every outer iteration
type IterationResult struct {
	Iteration    int
	Iterations   int
	Temperature  float64
	Energy       float64
	RequiredBits int

	// Decrypted is the refiner's live buffer. It is only valid for the
	// duration of the callback.
	Decrypted *series.Matrix
}

// Observer receives progress from a Refiner. Returning an error from
// IterationCompleted aborts the run.
type Observer interface {
	IterationStarted(iteration, iterations int, temperature float64)
	PassCompleted(pass PassResult)
	IterationCompleted(it IterationResult) error
}

// NopObserver ignores all progress
type NopObserver struct{}

func (NopObserver) IterationStarted(int, int, float64)       {}
func (NopObserver) PassCompleted(PassResult)                 {}
func (NopObserver) IterationCompleted(IterationResult) error { return nil }

// Observers fans progress out to several observers in order
type Observers []Observer

func (o Observers) IterationStarted(iteration, iterations int, temperature float64) {
	for _, obs := range o {
		obs.IterationStarted(iteration, iterations, temperature)
	}
}

func (o Observers) PassCompleted(pass PassResult) {
	for _, obs := range o {
		obs.PassCompleted(pass)
	}
}

func (o Observers) IterationCompleted(it IterationResult) error {
	for _, obs := range o {
		if err := obs.IterationCompleted(it); err != nil {
			return err
		}
	}
	return nil
}
