package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"gocrack/domain/core"
	"gocrack/domain/run"
	"gocrack/domain/series"
	"gocrack/internal/crack"
	"gocrack/internal/synth"
	"gocrack/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) WriteMatrix(ctx context.Context, path string, mat *series.Matrix) error {
	args := m.Called(ctx, path, mat)
	return args.Error(0)
}

type bufferProgress struct {
	crack.NopObserver
	buf bytes.Buffer
}

func (b *bufferProgress) Dispersion(label string, energy float64) {
	b.buf.WriteString(label + "\n")
}

func (b *bufferProgress) Printf(format string, args ...any) {}

func smallCrackRequest(t *testing.T, iterations int) (CrackRequest, *synth.Scenario) {
	t.Helper()
	s, err := synth.Generate(testkit.ScenarioConfig(15, 48, 11))
	require.NoError(t, err)

	params := crack.DefaultParams()
	params.Iterations = iterations
	params.BitCycles = 2

	return CrackRequest{
		Source:   "synthetic",
		Cipher:   s.Cipher,
		Plain:    s.Plain,
		Key:      s.Key,
		Params:   params,
		Restarts: 2,
		Workers:  2,
		Seed:     42,
		Rebase:   true,
		DumpDir:  "out",
	}, s
}

func TestCrackService_WritesDumpsAndRecordsRun(t *testing.T) {
	ctx := context.Background()
	kit, err := testkit.NewTestKit()
	require.NoError(t, err)

	req, _ := smallCrackRequest(t, 3)

	sink := &mockSink{}
	for _, name := range []string{DumpOriginal, DumpEncrypted, DumpDecrypted, DumpImproved} {
		sink.On("WriteMatrix", mock.Anything, filepath.Join("out", name), mock.AnythingOfType("*series.Matrix")).Return(nil)
	}

	svc := NewCrackService(kit.RNGAdapter(), kit.RunRepository(), sink)
	progress := &bufferProgress{}
	svc.SetProgress(progress)

	res, err := svc.Crack(ctx, req)
	require.NoError(t, err)

	sink.AssertNumberOfCalls(t, "WriteMatrix", 3+req.Params.Iterations+1)
	sink.AssertCalled(t, "WriteMatrix", mock.Anything, filepath.Join("out", DumpOriginal), req.Plain)
	assert.Equal(t, "original\nencrypted\ndecrypted\n", progress.buf.String())

	require.Len(t, res.Baselines, 3)
	assert.Len(t, res.Searches, 2)
	assert.Len(t, res.Trace, req.Params.Iterations)
	assert.Equal(t, res.Searches[res.Best], res.Record.FinalEnergy)
	require.NotNil(t, res.Evaluation)

	// The reported mask decrypts the original ciphertext to the reported data.
	decrypted, err := res.Mask.Apply(req.Cipher)
	require.NoError(t, err)
	assert.True(t, decrypted.Equal(res.Decrypted))
	assert.Equal(t, crack.Dispersion(res.Decrypted), res.Record.FinalEnergy)

	saved, err := kit.RunRepository().GetRun(ctx, res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, run.EncodeMask(res.Mask), saved.Mask)
	assert.Equal(t, req.Params.Width, saved.Width)
	require.NotNil(t, saved.KeyMatch)
	assert.Equal(t, res.Evaluation.LowBits, *saved.KeyMatch)
}

func TestCrackService_WithoutRebaseOrDumps(t *testing.T) {
	req, _ := smallCrackRequest(t, 2)
	req.Rebase = false
	req.DumpDir = ""
	req.Plain, req.Key = nil, nil
	req.Restarts = 1

	svc := NewCrackService(&testkit.RNGAdapter{}, nil, &mockSink{})
	res, err := svc.Crack(context.Background(), req)
	require.NoError(t, err)

	assert.Nil(t, res.Evaluation)
	assert.Nil(t, res.Record.PlainEnergy)
	require.Len(t, res.Baselines, 2)
	assert.Equal(t, "encrypted", res.Baselines[0].Label)

	decrypted, err := res.Mask.Apply(req.Cipher)
	require.NoError(t, err)
	assert.True(t, decrypted.Equal(res.Decrypted))
}

func TestCrackService_Deterministic(t *testing.T) {
	req, _ := smallCrackRequest(t, 3)
	req.DumpDir = ""
	svc := NewCrackService(&testkit.RNGAdapter{}, nil, nil)

	a, err := svc.Crack(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Crack(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Mask, b.Mask)
	assert.Equal(t, a.Record.Fingerprint, b.Record.Fingerprint)
	assert.NotEqual(t, a.Record.ID, b.Record.ID)
}

func TestCrackService_ValidatesInput(t *testing.T) {
	svc := NewCrackService(&testkit.RNGAdapter{}, nil, nil)
	ctx := context.Background()

	req, _ := smallCrackRequest(t, 1)
	bad := req.Cipher.Clone()
	bad.Set(0, 0, 0)
	req.Cipher = bad
	_, err := svc.Crack(ctx, req)
	assert.ErrorIs(t, err, core.ErrNonPositiveSample)

	req, _ = smallCrackRequest(t, 1)
	req.Key = req.Key[:3]
	_, err = svc.Crack(ctx, req)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	req, _ = smallCrackRequest(t, 1)
	req.Plain = nil
	_, err = svc.Crack(ctx, req)
	assert.Error(t, err)

	req, _ = smallCrackRequest(t, 1)
	req.Params.Iterations = 0
	_, err = svc.Crack(ctx, req)
	assert.ErrorIs(t, err, core.ErrInvalidParameters)
}

func TestCrackService_DumpFailureAborts(t *testing.T) {
	req, _ := smallCrackRequest(t, 3)
	sink := &mockSink{}
	sink.On("WriteMatrix", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := NewCrackService(&testkit.RNGAdapter{}, nil, sink).Crack(context.Background(), req)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestCrackService_RecoversKey uses the default search parameters (30
// iterations over bits 0..8, 6 cycles per bit) with 16 restarts, on 100 days
// of 360 measures drawn from the narrower testkit profile (mean 15, noise 0.7)
// rather than the stock generator.
func TestCrackService_RecoversKey(t *testing.T) {
	if testing.Short() {
		t.Skip("full-size recovery in -short mode")
	}

	s, err := synth.Generate(testkit.ScenarioConfig(100, 360, 2020))
	require.NoError(t, err)

	req := CrackRequest{
		Source:   "synthetic",
		Cipher:   s.Cipher,
		Plain:    s.Plain,
		Key:      s.Key,
		Params:   crack.DefaultParams(),
		Restarts: 16,
		Workers:  4,
		Seed:     42,
		Rebase:   true,
	}

	res, err := NewCrackService(&testkit.RNGAdapter{}, nil, nil).Crack(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.Evaluation)

	t.Logf("low-bit match %.3f, full match %.3f, energy ratio %.4f",
		res.Evaluation.LowBits, res.Evaluation.FullColumns, res.Evaluation.EnergyRatio)

	assert.GreaterOrEqual(t, res.Evaluation.LowBits, 0.9)
	plain := crack.Dispersion(s.Plain)
	assert.InEpsilon(t, plain, res.Record.FinalEnergy, 0.2)
	assert.Less(t, res.Record.FinalEnergy, res.Baselines[len(res.Baselines)-1].Energy)
}
