package crack

import (
	"math"
	"testing"

	"gocrack/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.NoError(t, p.Validate())
	assert.Equal(t, 49, p.PassesPerIteration())
	assert.False(t, p.FixedBaseline)
	assert.Zero(t, p.Schedule().Temperature(p.Iterations-1))
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"no iterations", func(p *Params) { p.Iterations = 0 }},
		{"max bit at width", func(p *Params) { p.MaxBit = p.Width }},
		{"negative max bit", func(p *Params) { p.MaxBit = -1 }},
		{"negative cycles", func(p *Params) { p.BitCycles = -1 }},
		{"negative T0", func(p *Params) { p.T0 = -1 }},
		{"NaN K", func(p *Params) { p.K = math.NaN() }},
		{"wide samples", func(p *Params) { p.Width = 64 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			assert.ErrorIs(t, p.Validate(), core.ErrInvalidParameters)
		})
	}
}
