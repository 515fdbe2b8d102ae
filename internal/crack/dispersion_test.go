package crack

import (
	"math"
	"math/rand/v2"
	"testing"

	"gocrack/domain/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRows(t *testing.T, rows [][]int32) *series.Matrix {
	t.Helper()
	m, err := series.FromRows(rows)
	require.NoError(t, err)
	return m
}

func randomMatrix(t *testing.T, rng *rand.Rand, days, measures, limit int) *series.Matrix {
	t.Helper()
	m, err := series.NewMatrix(days, measures)
	require.NoError(t, err)
	for r := 0; r < days; r++ {
		for c := 0; c < measures; c++ {
			m.Set(r, c, int32(1+rng.IntN(limit)))
		}
	}
	return m
}

func TestDispersion_KnownValue(t *testing.T) {
	// diffs 2 and 3 on one row: (4 + 9) / (1 * 2)
	assert.Equal(t, 6.5, Dispersion(mustRows(t, [][]int32{{1, 3, 6}})))
}

func TestDispersion_ZeroForConstantRows(t *testing.T) {
	m := mustRows(t, [][]int32{
		{5, 5, 5, 5},
		{9, 9, 9, 9},
		{1, 1, 1, 1},
	})
	assert.Zero(t, Dispersion(m))
}

func TestDispersion_SingleColumn(t *testing.T) {
	assert.Zero(t, Dispersion(mustRows(t, [][]int32{{7}, {100}})))
}

func TestDispersion_RowOrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	m := randomMatrix(t, rng, 8, 20, 1000)

	rows := m.Rows()
	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })

	assert.Equal(t, Dispersion(m), Dispersion(mustRows(t, rows)))
}

func TestDispersion_ColumnOrderMatters(t *testing.T) {
	smooth := mustRows(t, [][]int32{{1, 2, 3, 4}, {2, 3, 4, 5}})
	shuffled := mustRows(t, [][]int32{{1, 4, 2, 3}, {2, 5, 3, 4}})

	assert.Less(t, Dispersion(smooth), Dispersion(shuffled))
}

func TestDispersion_ExactForExtremeSamples(t *testing.T) {
	m := mustRows(t, [][]int32{
		{math.MinInt32, math.MaxInt32},
		{math.MaxInt32, math.MinInt32},
	})
	d := float64(math.MaxUint32)
	assert.InEpsilon(t, d*d, Dispersion(m), 1e-12)
}

func TestRequiredBits(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int32
		want int
	}{
		{"one needs no bits", [][]int32{{1}}, 0},
		{"two", [][]int32{{2}}, 1},
		{"power of two", [][]int32{{256}}, 8},
		{"just above", [][]int32{{3, 257}}, 9},
		{"non-positive skipped", [][]int32{{-1, 0, 4}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiredBits(mustRows(t, tt.rows)))
		})
	}
}

func TestRelativeChange(t *testing.T) {
	assert.Equal(t, 50.0, relativeChange(10, 5))
	assert.Equal(t, -100.0, relativeChange(10, 20))
	assert.Zero(t, relativeChange(0, 5))
}
