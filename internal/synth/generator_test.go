package synth

import (
	"testing"

	"gocrack/domain/core"
	"gocrack/domain/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_DefaultProfile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Days = 20
	cfg.Measures = 60

	s, err := Generate(cfg)
	require.NoError(t, err)

	assert.Equal(t, 20, s.Plain.Days())
	assert.Equal(t, 60, s.Plain.Measures())
	assert.Len(t, s.Key, 60)
	assert.NoError(t, s.Plain.ValidatePositive())
	assert.NoError(t, s.Cipher.ValidatePositive())

	for _, k := range s.Key {
		assert.GreaterOrEqual(t, k, cfg.KeyFloor)
		assert.Less(t, k, uint32(keyCeiling))
	}

	decrypted, err := s.Key.Apply(s.Cipher)
	require.NoError(t, err)
	assert.True(t, decrypted.Equal(s.Plain))
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Days = 5
	cfg.Measures = 30

	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)
	assert.True(t, a.Cipher.Equal(b.Cipher))
	assert.Equal(t, a.Key, b.Key)

	cfg.Seed++
	c, err := Generate(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Key, c.Key)
}

func TestGenerate_PlaintextStaysInBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Days = 50
	cfg.Measures = 90

	s, err := Generate(cfg)
	require.NoError(t, err)

	// mean in [10, 30], amplitude in [3.5, 8.5], noise in [-0.5, 0.5]
	for _, row := range s.Plain.Rows() {
		for _, v := range row {
			assert.GreaterOrEqual(t, v, int32(10))
			assert.LessOrEqual(t, v, int32(390))
		}
	}
}

func TestGenerate_Rejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Days = 0
	_, err := Generate(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.KeyFloor = 1 << 31
	_, err = Generate(cfg)
	assert.Error(t, err)

	// A flat profile centred on zero cannot stay positive.
	cfg = DefaultConfig()
	cfg.Days, cfg.Measures = 3, 10
	cfg.Mean, cfg.MeanSpread, cfg.Amplitude, cfg.AmplitudeSpread = 0, 0, 0, 0
	_, err = Generate(cfg)
	assert.ErrorIs(t, err, core.ErrNonPositiveSample)
}

func TestScenario_KeyIsXorOfPlainAndCipher(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Days, cfg.Measures = 4, 8
	s, err := Generate(cfg)
	require.NoError(t, err)

	for c, k := range s.Key {
		for r := 0; r < s.Plain.Days(); r++ {
			assert.Equal(t, s.Cipher.At(r, c), series.XorSample(s.Plain.At(r, c), k))
		}
	}
}
