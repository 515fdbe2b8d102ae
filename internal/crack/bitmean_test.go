package crack

import (
	"math/rand/v2"
	"testing"

	"gocrack/domain/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// column builds a one-column matrix with n rows having bit 0 set
func bitColumn(t *testing.T, days, n int) *series.Matrix {
	t.Helper()
	m, err := series.NewMatrix(days, 1)
	require.NoError(t, err)
	for r := 0; r < days; r++ {
		v := int32(2)
		if r < n {
			v |= 1
		}
		m.Set(r, 0, v)
	}
	return m
}

func TestEstimateBitMeans_MajorityRule(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		set     int
		wantBit bool
	}{
		{"tie goes to set", 4, 2, true},
		{"majority set", 100, 51, true},
		{"minority clear", 100, 49, false},
		{"all set", 5, 5, true},
		{"none set", 5, 0, false},
		{"odd tie impossible", 3, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := EstimateBitMeans(bitColumn(t, tt.days, tt.set), MaxWidth)
			assert.Equal(t, tt.wantBit, est.Mask[0]&1 == 1)
			assert.InDelta(t, float64(tt.set)/float64(tt.days), est.Means[0][0], 1e-12)
			// bit 1 is set on every row
			assert.Equal(t, 1.0, est.Means[0][1])
		})
	}
}

func TestEstimateBitMeans_ClampsWidth(t *testing.T) {
	m := mustRows(t, [][]int32{{1, 2}})
	for _, width := range []int{0, -3, 33} {
		est := EstimateBitMeans(m, width)
		assert.Equal(t, MaxWidth, est.Width)
		assert.Len(t, est.Means[0], MaxWidth)
	}

	est := EstimateBitMeans(m, 4)
	assert.Equal(t, 4, est.Width)
	assert.Len(t, est.Means[1], 4)
}

func TestEstimateBitMeans_RecoversHighBits(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	plain := randomMatrix(t, rng, 30, 25, 1<<10)

	key := make(series.Keystream, plain.Measures())
	for i := range key {
		key[i] = rng.Uint32()
	}
	ct, err := series.Encrypt(plain, key)
	require.NoError(t, err)

	est := EstimateBitMeans(ct, MaxWidth)
	for c := range key {
		assert.Equal(t, key[c]>>11, est.Mask[c]>>11, "column %d", c)
	}
}
