package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"gocrack/domain/core"
	"gocrack/domain/run"
	"gocrack/domain/series"
	"gocrack/internal/crack"
	"gocrack/internal/errors"
	"gocrack/ports"
)

// Dump file names, relative to CrackRequest.DumpDir
const (
	DumpOriginal  = "original.m"
	DumpEncrypted = "encrypted.m"
	DumpDecrypted = "decrypted.m"
	DumpImproved  = "improved.m"
)

// Progress receives the human-readable output of a run: the refiner's pass
// and iteration events plus the baseline lines printed before refining.
type Progress interface {
	crack.Observer
	Dispersion(label string, energy float64)
	Printf(format string, args ...any)
}

type nopProgress struct{ crack.NopObserver }

func (nopProgress) Dispersion(string, float64) {}
func (nopProgress) Printf(string, ...any)      {}

// CrackService runs the full recovery pipeline: estimate, refine, evaluate,
// dump and record.
type CrackService struct {
	rngPort  ports.RNGPort
	runs     ports.RunRepository
	sink     ports.MatrixSinkPort
	progress Progress
}

// CrackRequest defines the inputs for one recovery run
type CrackRequest struct {
	Source string
	Cipher *series.Matrix

	// Plain and Key are known only for synthetic scenarios
	Plain *series.Matrix
	Key   series.Keystream

	Params   crack.Params
	Restarts int
	Workers  int
	Seed     uint64

	// Rebase re-estimates on the first decryption before refining
	Rebase bool

	// DumpDir receives the .m dumps; empty disables them
	DumpDir string
}

// Baseline is an energy measured before refining
type Baseline struct {
	Label  string
	Energy float64
}

// CrackResult contains the complete output of a run
type CrackResult struct {
	Record    *run.Record
	Mask      series.Keystream // applies to the original ciphertext
	Decrypted *series.Matrix
	Estimate  crack.Estimate
	Baselines []Baseline
	KT0       float64

	Searches  []float64
	Best      int
	Trace     []float64
	TraceMean float64
	TraceStd  float64

	Evaluation *Evaluation
	RuntimeMs  int64
}

// NewCrackService creates a crack service. runs and sink may be nil to
// disable the ledger and the dumps.
func NewCrackService(rngPort ports.RNGPort, runs ports.RunRepository, sink ports.MatrixSinkPort) *CrackService {
	return &CrackService{
		rngPort:  rngPort,
		runs:     runs,
		sink:     sink,
		progress: nopProgress{},
	}
}

// SetProgress installs the console output; nil silences it
func (s *CrackService) SetProgress(p Progress) {
	if p == nil {
		p = nopProgress{}
	}
	s.progress = p
}

// Crack recovers the keystream of req.Cipher
func (s *CrackService) Crack(ctx context.Context, req CrackRequest) (*CrackResult, error) {
	startTime := time.Now()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	ct := req.Cipher

	if req.Plain != nil {
		if err := s.dump(ctx, req.DumpDir, DumpOriginal, req.Plain); err != nil {
			return nil, err
		}
	}
	if err := s.dump(ctx, req.DumpDir, DumpEncrypted, ct); err != nil {
		return nil, err
	}

	est := crack.EstimateBitMeans(ct, req.Params.Width)
	dec, err := crack.ApplyMask(ct, est.Mask)
	if err != nil {
		return nil, err
	}

	var baselines []Baseline
	if req.Plain != nil {
		baselines = append(baselines, Baseline{"original", crack.Dispersion(req.Plain)})
	}
	baselines = append(baselines,
		Baseline{"encrypted", crack.Dispersion(ct)},
		Baseline{"decrypted", crack.Dispersion(dec)},
	)
	for _, b := range baselines {
		s.progress.Dispersion(b.Label, b.Energy)
	}

	if err := s.dump(ctx, req.DumpDir, DumpDecrypted, dec); err != nil {
		return nil, err
	}

	initialEnergy := baselines[len(baselines)-1].Energy
	kT0 := 0.0
	if initialEnergy > 0 {
		kT0 = float64(req.Params.Iterations) / initialEnergy * .25
	}
	s.progress.Printf("kT0: %.6g\n", kT0)

	// Without rebasing the search starts from the estimate on the ciphertext
	// itself; with it, the first decryption becomes the working data and the
	// final mask is the composition of both stages.
	working, base, initial := ct, make(crack.Mask, ct.Measures()), est.Mask
	if req.Rebase {
		working, base = dec, est.Mask
		initial = crack.EstimateBitMeans(working, req.Params.Width).Mask
	}

	log.Printf("[CrackService] Refining %s: %d days x %d measures, %d search(es), seed %d",
		req.Source, ct.Days(), ct.Measures(), req.Restarts, req.Seed)

	ms, err := MultiStart(ctx, s.rngPort, MultiStartRequest{
		Cipher:   working,
		Initial:  initial,
		Params:   req.Params,
		Restarts: req.Restarts,
		Workers:  req.Workers,
		Seed:     req.Seed,
		Observer: func(i int) crack.Observer {
			if i != 0 {
				return nil
			}
			return crack.Observers{s.progress, s.improvedDumper(ctx, req.DumpDir)}
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "search failed")
	}
	best := ms.BestResult()
	s.progress.Printf("\n")

	mask, err := base.Xor(best.Mask)
	if err != nil {
		return nil, err
	}
	if err := s.dump(ctx, req.DumpDir, DumpImproved, best.Decrypted); err != nil {
		return nil, err
	}

	result := &CrackResult{
		Mask:      mask,
		Decrypted: best.Decrypted,
		Estimate:  est,
		Baselines: baselines,
		KT0:       kT0,
		Searches:  ms.Energies(),
		Best:      ms.Best,
		Trace:     best.Trace,
	}
	result.TraceMean, result.TraceStd = TraceSummary(best.Trace)

	rec := run.NewRecord(req.Source, ct, int64(req.Seed), run.Settings{
		Iterations:    req.Params.Iterations,
		MaxBit:        req.Params.MaxBit,
		BitCycles:     req.Params.BitCycles,
		T0:            req.Params.T0,
		K:             req.Params.K,
		Width:         req.Params.Width,
		Restarts:      req.Restarts,
		Rebase:        req.Rebase,
		FixedBaseline: req.Params.FixedBaseline,
	})
	rec.InitialEnergy = initialEnergy
	rec.FinalEnergy = best.Energy
	rec.Mask = run.EncodeMask(mask)

	if req.Key != nil {
		ev, err := Evaluate(mask, req.Key, req.Params.MaxBit)
		if err != nil {
			return nil, err
		}
		plainEnergy := crack.Dispersion(req.Plain)
		if plainEnergy > 0 {
			ev.EnergyRatio = best.Energy / plainEnergy
		}
		result.Evaluation = ev
		rec.PlainEnergy = &plainEnergy
		rec.KeyMatch = &ev.LowBits
	}
	result.Record = rec

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, rec); err != nil {
			return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to record run")
		}
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	log.Printf("[CrackService] Run %s finished in %dms: dispersion %.6g -> %.6g",
		rec.ID, result.RuntimeMs, initialEnergy, best.Energy)
	return result, nil
}

func (s *CrackService) validate(req CrackRequest) error {
	if req.Cipher == nil {
		return core.ErrEmptyMatrix
	}
	if err := req.Cipher.ValidatePositive(); err != nil {
		return fmt.Errorf("ciphertext: %w", err)
	}
	if (req.Plain == nil) != (req.Key == nil) {
		return errors.ValidationError("plaintext and key must be given together")
	}
	if req.Plain != nil {
		if !req.Plain.SameShape(req.Cipher) {
			return core.NewDimensionError("plaintext columns", req.Plain.Measures(), req.Cipher.Measures())
		}
		if err := req.Plain.ValidatePositive(); err != nil {
			return fmt.Errorf("plaintext: %w", err)
		}
	}
	if req.Key != nil && len(req.Key) != req.Cipher.Measures() {
		return core.NewDimensionError("key", len(req.Key), req.Cipher.Measures())
	}
	return req.Params.Validate()
}

func (s *CrackService) dump(ctx context.Context, dir, name string, m *series.Matrix) error {
	if s.sink == nil || dir == "" {
		return nil
	}
	return s.sink.WriteMatrix(ctx, filepath.Join(dir, name), m)
}

// improvedDumper rewrites improved.m after every outer iteration, so the file
// always shows the latest candidate of the first search.
func (s *CrackService) improvedDumper(ctx context.Context, dir string) crack.Observer {
	return &dumpObserver{write: func(m *series.Matrix) error {
		return s.dump(ctx, dir, DumpImproved, m)
	}}
}

type dumpObserver struct {
	crack.NopObserver
	write func(m *series.Matrix) error
}

func (d *dumpObserver) IterationCompleted(it crack.IterationResult) error {
	return d.write(it.Decrypted)
}
