package crack

import "math"

// Schedule is the annealing temperature curve
//
//	T(j) = T0 * (exp(-K*j/(n-1)) - exp(-K))
//
// It falls monotonically and reaches exactly zero on the last iteration.
type Schedule struct {
	T0         float64
	K          float64
	Iterations int
}

// Temperature returns the temperature for iteration j
func (s Schedule) Temperature(j int) float64 {
	floor := math.Exp(-s.K)
	if s.Iterations <= 1 {
		return s.T0 * (1 - floor)
	}
	progress := float64(j) / float64(s.Iterations-1)
	return s.T0 * (math.Exp(-s.K*progress) - floor)
}

// Temperatures returns the whole curve
func (s Schedule) Temperatures() []float64 {
	out := make([]float64, max(s.Iterations, 0))
	for j := range out {
		out[j] = s.Temperature(j)
	}
	return out
}
