package crack

import (
	"gocrack/domain/series"
)

// EnergyTracker keeps the dispersion of one matrix up to date while single
// columns change. It stores one exact sum per adjacent column pair, so
// replacing column c only touches pairs c and c+1 and the resulting energy is
// bit-identical to a full Dispersion pass over the same data.
type EnergyTracker struct {
	m     *series.Matrix
	pairs []sqSum // pairs[c] covers columns (c-1, c); pairs[0] is unused
	total sqSum
}

// NewEnergyTracker builds the pair sums for m. The tracker reads m on every
// proposal, so m must only change through Commit.
func NewEnergyTracker(m *series.Matrix) *EnergyTracker {
	t := &EnergyTracker{
		m:     m,
		pairs: make([]sqSum, m.Measures()),
	}
	t.Rebuild()
	return t
}

// Rebuild recomputes every pair sum from the matrix
func (t *EnergyTracker) Rebuild() {
	t.total = sqSum{}
	for c := 1; c < t.m.Measures(); c++ {
		t.pairs[c] = pairSum(t.m, c)
		t.total = t.total.add(t.pairs[c])
	}
}

// Energy returns the dispersion of the tracked matrix
func (t *EnergyTracker) Energy() float64 {
	return energyOf(t.total, t.m.Days(), t.m.Measures())
}

// Proposal is a candidate replacement for one column together with the pair
// sums it would produce.
type Proposal struct {
	Column int
	Energy float64

	values []int32
	left   sqSum
	right  sqSum
	total  sqSum
}

// Propose scores replacing column c with values without modifying the matrix.
// The returned proposal aliases values until it is committed or dropped.
func (t *EnergyTracker) Propose(c int, values []int32) Proposal {
	p := Proposal{Column: c, values: values, total: t.total}
	days := t.m.Days()

	if c > 0 {
		for r := 0; r < days; r++ {
			p.left = p.left.addSquare(values[r], t.m.At(r, c-1))
		}
		p.total = p.total.sub(t.pairs[c]).add(p.left)
	}
	if c+1 < t.m.Measures() {
		for r := 0; r < days; r++ {
			p.right = p.right.addSquare(t.m.At(r, c+1), values[r])
		}
		p.total = p.total.sub(t.pairs[c+1]).add(p.right)
	}

	p.Energy = energyOf(p.total, days, t.m.Measures())
	return p
}

// Commit writes the proposed column into the matrix and adopts its sums
func (t *EnergyTracker) Commit(p Proposal) {
	t.m.SetColumn(p.Column, p.values)
	if p.Column > 0 {
		t.pairs[p.Column] = p.left
	}
	if p.Column+1 < t.m.Measures() {
		t.pairs[p.Column+1] = p.right
	}
	t.total = p.total
}
