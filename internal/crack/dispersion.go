package crack

import (
	"math"
	"math/bits"

	"gocrack/domain/series"
)

// sqSum accumulates squared differences exactly. A single squared difference
// of two int32 samples fits in 64 bits; the running sum needs the high word.
type sqSum struct {
	hi, lo uint64
}

func (s sqSum) add(o sqSum) sqSum {
	lo, carry := bits.Add64(s.lo, o.lo, 0)
	hi, _ := bits.Add64(s.hi, o.hi, carry)
	return sqSum{hi: hi, lo: lo}
}

func (s sqSum) sub(o sqSum) sqSum {
	lo, borrow := bits.Sub64(s.lo, o.lo, 0)
	hi, _ := bits.Sub64(s.hi, o.hi, borrow)
	return sqSum{hi: hi, lo: lo}
}

func (s sqSum) addSquare(a, b int32) sqSum {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	u := uint64(d)
	lo, carry := bits.Add64(s.lo, u*u, 0)
	return sqSum{hi: s.hi + carry, lo: lo}
}

func (s sqSum) float64() float64 {
	return float64(s.hi)*(1<<64) + float64(s.lo)
}

// energyOf normalises an exact sum over all rows and adjacent column pairs.
// Every path that produces an energy goes through here so equal sums always
// give bit-identical energies.
func energyOf(total sqSum, days, measures int) float64 {
	if measures < 2 {
		return 0
	}
	return total.float64() / float64(days*(measures-1))
}

// pairSum returns sum over rows of (m[r][c] - m[r][c-1])^2
func pairSum(m *series.Matrix, c int) sqSum {
	var s sqSum
	for r := 0; r < m.Days(); r++ {
		s = s.addSquare(m.At(r, c), m.At(r, c-1))
	}
	return s
}

// Dispersion scores how noisy a candidate matrix is: the squared difference
// between each column and its predecessor, summed per row and averaged over
// all rows and adjacent pairs. Zero iff every row is constant.
func Dispersion(m *series.Matrix) float64 {
	var total sqSum
	for r := 0; r < m.Days(); r++ {
		row := m.Row(r)
		for c := 1; c < len(row); c++ {
			total = total.addSquare(row[c], row[c-1])
		}
	}
	return energyOf(total, m.Days(), m.Measures())
}

// RequiredBits returns the widest ceil(log2(v)) over the strictly positive
// samples of m. Non-positive samples have no defined width and are skipped.
func RequiredBits(m *series.Matrix) int {
	widest := 0
	for r := 0; r < m.Days(); r++ {
		for _, v := range m.Row(r) {
			if v <= 0 {
				continue
			}
			if w := bits.Len32(uint32(v) - 1); w > widest {
				widest = w
			}
		}
	}
	return widest
}

// relativeChange is the percentage drop from before to after, as printed in
// progress lines. A zero baseline has no meaningful percentage.
func relativeChange(before, after float64) float64 {
	if before == 0 || math.IsInf(before, 0) {
		return 0
	}
	return 100 * (before - after) / before
}
