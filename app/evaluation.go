package app

import (
	"math/bits"

	"gocrack/domain/core"
	"gocrack/domain/series"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Evaluation compares a recovered mask with the true key of a synthetic
// scenario.
type Evaluation struct {
	LowBits     float64 // share of columns correct in every bit below maxBit
	FullColumns float64 // share of columns correct in all bits

	BitErrors    []float64 // wrong bits per column
	MeanErrors   float64
	MedianErrors float64
	P90Errors    float64

	// EnergyRatio is final dispersion over plaintext dispersion; 1 means the
	// candidate is as smooth as the truth.
	EnergyRatio float64
}

// Evaluate scores mask against key. maxBit selects the low bits the refiner
// searches one at a time.
func Evaluate(mask, key series.Keystream, maxBit int) (*Evaluation, error) {
	if len(mask) != len(key) {
		return nil, core.NewDimensionError("mask", len(mask), len(key))
	}
	if len(key) == 0 {
		return nil, core.ErrEmptyMatrix
	}

	low := uint32(1)<<uint(maxBit) - 1
	errs := make(stats.Float64Data, len(key))
	var lowOK, fullOK int
	for c := range key {
		diff := mask[c] ^ key[c]
		if diff&low == 0 {
			lowOK++
		}
		if diff == 0 {
			fullOK++
		}
		errs[c] = float64(bits.OnesCount32(diff))
	}

	ev := &Evaluation{
		LowBits:     float64(lowOK) / float64(len(key)),
		FullColumns: float64(fullOK) / float64(len(key)),
		BitErrors:   errs,
	}
	// The inputs are non-empty, so the stats calls cannot fail.
	ev.MeanErrors, _ = errs.Mean()
	ev.MedianErrors, _ = errs.Median()
	ev.P90Errors, _ = errs.Percentile(90)
	return ev, nil
}

// TraceSummary returns the mean and sample standard deviation of an energy
// trace. Fewer than two points have no spread.
func TraceSummary(trace []float64) (mean, std float64) {
	switch len(trace) {
	case 0:
		return 0, 0
	case 1:
		return trace[0], 0
	}
	return stat.MeanStdDev(trace, nil)
}
