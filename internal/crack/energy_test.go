package crack

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergyTracker_MatchesFullDispersion(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	m := randomMatrix(t, rng, 9, 15, 1<<24)
	tracker := NewEnergyTracker(m)
	require.Equal(t, Dispersion(m), tracker.Energy())

	values := make([]int32, m.Days())
	for step := 0; step < 200; step++ {
		c := rng.IntN(m.Measures())
		for r := range values {
			values[r] = int32(1 + rng.IntN(1<<24))
		}

		candidate := m.Clone()
		candidate.SetColumn(c, values)
		want := Dispersion(candidate)

		p := tracker.Propose(c, append([]int32(nil), values...))
		require.Equal(t, want, p.Energy, "step %d column %d", step, c)

		if rng.IntN(2) == 0 {
			tracker.Commit(p)
			require.True(t, m.Equal(candidate))
		}
		require.Equal(t, Dispersion(m), tracker.Energy(), "step %d", step)
	}
}

func TestEnergyTracker_ProposeDoesNotMutate(t *testing.T) {
	m := mustRows(t, [][]int32{{1, 2, 3}, {4, 5, 6}})
	before := m.Clone()
	tracker := NewEnergyTracker(m)
	energy := tracker.Energy()

	p := tracker.Propose(1, []int32{100, 200})
	assert.NotEqual(t, energy, p.Energy)
	assert.True(t, m.Equal(before))
	assert.Equal(t, energy, tracker.Energy())
}

func TestEnergyTracker_EdgeColumns(t *testing.T) {
	m := mustRows(t, [][]int32{{1, 2, 3, 4}})
	tracker := NewEnergyTracker(m)

	first := tracker.Propose(0, []int32{10})
	last := tracker.Propose(3, []int32{10})

	// (8^2 + 1 + 1) / 3 and (1 + 1 + 7^2) / 3
	assert.Equal(t, 66.0/3, first.Energy)
	assert.Equal(t, 51.0/3, last.Energy)
}
