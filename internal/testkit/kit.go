package testkit

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"

	"gocrack/domain/core"
	"gocrack/domain/run"
	"gocrack/internal/synth"
	"gocrack/ports"
)

// TestKit provides testing utilities and fixtures. The command line also uses
// it when no ledger database is configured.
type TestKit struct {
	runs *InMemoryRunRepository // Shared ledger instance
}

// NewTestKit creates a new test kit instance
func NewTestKit() (*TestKit, error) {
	return &TestKit{runs: NewInMemoryRunRepository()}, nil
}

// RNGAdapter returns an RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return &RNGAdapter{}
}

// RunRepository returns the in-memory run ledger
func (t *TestKit) RunRepository() ports.RunRepository {
	return t.runs
}

// ScenarioConfig returns a synthetic profile the refiner reliably solves with
// a handful of restarts: a narrower band of values and lighter noise than the
// stock profile.
func ScenarioConfig(days, measures int, seed uint64) synth.Config {
	cfg := synth.DefaultConfig()
	cfg.Days = days
	cfg.Measures = measures
	cfg.Seed = seed
	cfg.Mean = 15
	cfg.Noise = 0.7
	return cfg
}

// RNGAdapter implements the RNGPort interface with PCG streams
type RNGAdapter struct{}

// Stream creates a deterministic RNG stream for a specific stage and key
func (r *RNGAdapter) Stream(ctx context.Context, stageName, key string, baseSeed uint64) (*rand.Rand, error) {
	// Create deterministic seed by hashing stageName + key + baseSeed
	seed := baseSeed
	if stageName != "" {
		seed = uint64(hashString(stageName)) + seed
	}
	if key != "" {
		seed = uint64(hashString(key)) + seed
	}
	return rand.New(rand.NewPCG(seed, uint64(hashString(stageName+"/"+key)))), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

// InMemoryRunRepository implements RunRepository without a database
type InMemoryRunRepository struct {
	runs map[core.RunID]run.Record
	mu   sync.RWMutex
}

func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]run.Record)}
}

func (s *InMemoryRunRepository) SaveRun(ctx context.Context, rec *run.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rec.ID] = *rec
	return nil
}

func (s *InMemoryRunRepository) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	return &rec, nil
}

func (s *InMemoryRunRepository) ListRuns(ctx context.Context, limit int) ([]*run.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*run.Record, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
