package crack

import (
	"math"

	"gocrack/domain/core"
	"gocrack/domain/series"
)

// Rand is the random source consumed by the refiner. *math/rand/v2.Rand
// satisfies it; a fixed seed replays the exact proposal sequence.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Refiner anneals a candidate mask against the dispersion of the data it
// decrypts. It owns the mask and the decrypted buffer; the ciphertext is only
// read.
type Refiner struct {
	params   Params
	ct       *series.Matrix
	mask     Mask
	dec      *series.Matrix
	tracker  *EnergyTracker
	rng      Rand
	observer Observer

	column []int32
}

// Result is the outcome of a full run
type Result struct {
	Mask      Mask
	Decrypted *series.Matrix
	Energy    float64
	Trace     []float64 // energy after each outer iteration
}

// NewRefiner prepares a search over ct starting from initial. The initial
// mask is copied.
func NewRefiner(ct *series.Matrix, initial Mask, params Params, rng Rand) (*Refiner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(initial) != ct.Measures() {
		return nil, core.NewDimensionError("initial mask", len(initial), ct.Measures())
	}
	if rng == nil {
		return nil, core.NewParameterError("rng", "is required")
	}

	mask := initial.Clone()
	dec, err := ApplyMask(ct, mask)
	if err != nil {
		return nil, err
	}

	return &Refiner{
		params:   params,
		ct:       ct,
		mask:     mask,
		dec:      dec,
		tracker:  NewEnergyTracker(dec),
		rng:      rng,
		observer: NopObserver{},
		column:   make([]int32, ct.Days()),
	}, nil
}

// SetObserver installs a progress observer; nil restores the silent default
func (r *Refiner) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	r.observer = o
}

// Mask returns a copy of the current mask
func (r *Refiner) Mask() Mask { return r.mask.Clone() }

// Decrypted returns a copy of the current decrypted matrix
func (r *Refiner) Decrypted() *series.Matrix { return r.dec.Clone() }

// Energy returns the dispersion of the current candidate
func (r *Refiner) Energy() float64 {
	if r.params.FullRecompute {
		return Dispersion(r.dec)
	}
	return r.tracker.Energy()
}

// Run performs exactly Params.Iterations outer steps. There is no early exit;
// the only error source is the observer.
func (r *Refiner) Run() (*Result, error) {
	schedule := r.params.Schedule()
	trace := make([]float64, 0, r.params.Iterations)

	for j := 0; j < r.params.Iterations; j++ {
		t := schedule.Temperature(j)
		r.observer.IterationStarted(j, r.params.Iterations, t)

		for i := 0; i < r.params.PassesPerIteration(); i++ {
			bit := r.rng.IntN(r.params.MaxBit + 1)
			pass := r.AdjustBit(bit, t)
			pass.Iteration = j
			r.observer.PassCompleted(pass)
		}

		energy := r.Energy()
		trace = append(trace, energy)
		err := r.observer.IterationCompleted(IterationResult{
			Iteration:    j,
			Iterations:   r.params.Iterations,
			Temperature:  t,
			Energy:       energy,
			RequiredBits: RequiredBits(r.dec),
			Decrypted:    r.dec,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Mask:      r.Mask(),
		Decrypted: r.Decrypted(),
		Energy:    r.Energy(),
		Trace:     trace,
	}, nil
}

// AdjustBit sweeps the toggle for bit across every column in index order at
// temperature t. Each column's proposal is judged against the energy left by
// the previous column, so acceptances propagate through the sweep.
func (r *Refiner) AdjustBit(bit int, t float64) PassResult {
	toggle := Toggle(bit, r.params.MaxBit)
	before := r.Energy()
	current := before

	accepted := 0
	for c := range r.mask {
		baseline := current
		if r.params.FixedBaseline {
			baseline = before
		}
		if energy, ok := r.propose(c, toggle, baseline, t); ok {
			current = energy
			accepted++
		}
	}

	return PassResult{
		Bit:         bit,
		Toggle:      toggle,
		Temperature: t,
		Before:      before,
		After:       r.Energy(),
		Accepted:    accepted,
	}
}

// propose flips toggle in column c and keeps it when accepted. On rejection
// the mask and the decrypted column are restored.
func (r *Refiner) propose(c int, toggle uint32, baseline, t float64) (float64, bool) {
	r.mask[c] ^= toggle

	if r.params.FullRecompute {
		// Reference path: the whole buffer is rebuilt for every proposal.
		r.rebuild()
		energy := Dispersion(r.dec)
		if r.accept(baseline, energy, t) {
			return energy, true
		}
		r.mask[c] ^= toggle
		decryptColumn(r.column, r.ct, c, r.mask[c])
		r.dec.SetColumn(c, r.column)
		return baseline, false
	}

	decryptColumn(r.column, r.ct, c, r.mask[c])
	p := r.tracker.Propose(c, r.column)
	if r.accept(baseline, p.Energy, t) {
		r.tracker.Commit(p)
		return p.Energy, true
	}
	r.mask[c] ^= toggle
	return baseline, false
}

// rebuild decrypts the whole ciphertext into the working buffer. Shapes were
// checked by NewRefiner.
func (r *Refiner) rebuild() {
	for row := 0; row < r.ct.Days(); row++ {
		src, dst := r.ct.Row(row), r.dec.Row(row)
		for c, v := range src {
			dst[c] = series.XorSample(v, r.mask[c])
		}
	}
}

// accept is the Metropolis rule. Downhill moves always pass; otherwise a
// fresh uniform draw is compared with exp(-(next-current)/t). At zero
// temperature nothing but a strict improvement passes.
func (r *Refiner) accept(current, next, t float64) bool {
	if next < current {
		return true
	}
	if t <= 0 {
		return false
	}
	return math.Exp(-(next-current)/t) >= r.rng.Float64()
}
