// Package synth generates the synthetic test scenario: a smooth periodic
// series repeated over many days, a random per-column keystream and the
// resulting ciphertext.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"gocrack/domain/series"
)

// keyCeiling keeps bit 31 clear so ciphertext stays in the positive int32 range
const keyCeiling = 1 << 31

// Config describes one synthetic scenario. Each day draws its own mean,
// amplitude and phase; every sample is
//
//	round((mean + ampl*sin(phase + i/Measures*pi) + noise) * Scale)
//
// where the spreads and the noise are uniform over [-0.5, 0.5) scaled by the
// matching field.
type Config struct {
	Days     int
	Measures int
	Seed     uint64

	Mean            float64
	MeanSpread      float64
	Amplitude       float64
	AmplitudeSpread float64
	PhaseSpread     float64
	Noise           float64
	Scale           float64

	// KeyFloor is the smallest key word. Keys above every plaintext value
	// guarantee a non-zero ciphertext.
	KeyFloor uint32
}

func DefaultConfig() Config {
	return Config{
		Days:            100,
		Measures:        6 * 60,
		Seed:            42,
		Mean:            20,
		MeanSpread:      20,
		Amplitude:       6,
		AmplitudeSpread: 5,
		PhaseSpread:     0.3 * math.Pi,
		Noise:           1,
		Scale:           10,
		KeyFloor:        1 << 16,
	}
}

// Scenario is a generated plaintext together with its key and ciphertext
type Scenario struct {
	Config Config
	Plain  *series.Matrix
	Cipher *series.Matrix
	Key    series.Keystream
}

// Generate builds a scenario. The same Config always yields the same data.
func Generate(cfg Config) (*Scenario, error) {
	if cfg.Days <= 0 || cfg.Measures <= 0 {
		return nil, fmt.Errorf("days and measures must be > 0")
	}
	if cfg.KeyFloor >= keyCeiling {
		return nil, fmt.Errorf("key floor must be below 2^31")
	}
	if cfg.Scale <= 0 {
		return nil, fmt.Errorf("scale must be > 0")
	}

	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x5851f42d4c957f2d)
	rng := rand.New(src)
	spread := distuv.Uniform{Min: -0.5, Max: 0.5, Src: src}

	key := make(series.Keystream, cfg.Measures)
	for i := range key {
		key[i] = cfg.KeyFloor + uint32(rng.Uint64N(uint64(keyCeiling-cfg.KeyFloor)))
	}

	plain, err := series.NewMatrix(cfg.Days, cfg.Measures)
	if err != nil {
		return nil, err
	}
	for d := 0; d < cfg.Days; d++ {
		mean := cfg.Mean + cfg.MeanSpread*spread.Rand()
		ampl := cfg.Amplitude + cfg.AmplitudeSpread*spread.Rand()
		phase := cfg.PhaseSpread * spread.Rand()

		for i := 0; i < cfg.Measures; i++ {
			x := phase + float64(i)/float64(cfg.Measures)*math.Pi
			v := mean + ampl*math.Sin(x) + cfg.Noise*spread.Rand()
			plain.Set(d, i, int32(math.Round(v*cfg.Scale)))
		}
	}
	if err := plain.ValidatePositive(); err != nil {
		return nil, fmt.Errorf("synthetic profile produced an invalid plaintext: %w", err)
	}

	cipher, err := series.Encrypt(plain, key)
	if err != nil {
		return nil, err
	}
	if err := cipher.ValidatePositive(); err != nil {
		return nil, fmt.Errorf("key floor too low for this profile: %w", err)
	}

	return &Scenario{
		Config: cfg,
		Plain:  plain,
		Cipher: cipher,
		Key:    key,
	}, nil
}
