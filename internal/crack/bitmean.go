package crack

import (
	"gocrack/domain/series"
)

// MaxWidth is the sample word size in bits
const MaxWidth = 32

// BitMeans holds, per column, the fraction of rows with each bit set
type BitMeans [][]float64

// Estimate is the majority-vote seed for the keystream
type Estimate struct {
	Mask  Mask
	Means BitMeans
	Width int
}

// EstimateBitMeans votes each mask bit from the ciphertext. When the plaintext
// bit is mostly 0 the majority ciphertext bit equals the key bit. Ties go to
// "set". Low-order bits are noisy and are left for the refiner to fix.
func EstimateBitMeans(ct *series.Matrix, width int) Estimate {
	if width <= 0 || width > MaxWidth {
		width = MaxWidth
	}
	days := ct.Days()
	est := Estimate{
		Mask:  make(Mask, ct.Measures()),
		Means: make(BitMeans, ct.Measures()),
		Width: width,
	}

	counts := make([]int, width)
	for c := 0; c < ct.Measures(); c++ {
		clear(counts)
		for r := 0; r < days; r++ {
			v := uint32(ct.At(r, c))
			for k := range counts {
				counts[k] += int(v >> uint(k) & 1)
			}
		}

		means := make([]float64, width)
		var mask uint32
		for k, n := range counts {
			means[k] = float64(n) / float64(days)
			if 2*n >= days {
				mask |= 1 << uint(k)
			}
		}
		est.Mask[c] = mask
		est.Means[c] = means
	}
	return est
}
