package app

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"gocrack/domain/core"
	"gocrack/domain/series"
	"gocrack/internal/crack"
	"gocrack/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// searchStage names the RNG streams handed to the independent searches
const searchStage = "search"

// MultiStartRequest describes a batch of independent annealing searches over
// the same ciphertext and starting mask.
type MultiStartRequest struct {
	Cipher   *series.Matrix
	Initial  crack.Mask
	Params   crack.Params
	Restarts int
	Workers  int
	Seed     uint64

	// Observer returns the progress observer for search i; nil means silent
	Observer func(i int) crack.Observer
}

// MultiStartResult holds every search outcome and the index of the best one
type MultiStartResult struct {
	Searches []*crack.Result
	Best     int
}

// BestResult returns the lowest-energy search
func (r *MultiStartResult) BestResult() *crack.Result {
	return r.Searches[r.Best]
}

// Energies lists the final energy of each search in order
func (r *MultiStartResult) Energies() []float64 {
	out := make([]float64, len(r.Searches))
	for i, s := range r.Searches {
		out[i] = s.Energy
	}
	return out
}

// MultiStart runs Restarts searches with at most Workers in flight. Each
// search owns its refiner and draws from its own seeded stream, so the result
// does not depend on scheduling. The lowest final energy wins; ties go to the
// lower index.
func MultiStart(ctx context.Context, rngPort ports.RNGPort, req MultiStartRequest) (*MultiStartResult, error) {
	if req.Restarts < 1 {
		return nil, core.NewParameterError("restarts", "must be at least 1")
	}
	workers := req.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]*crack.Result, req.Restarts)
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < req.Restarts; i++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			rng, err := rngPort.Stream(gctx, searchStage, strconv.Itoa(i), req.Seed)
			if err != nil {
				return fmt.Errorf("search %d: %w", i, err)
			}
			refiner, err := crack.NewRefiner(req.Cipher, req.Initial, req.Params, rng)
			if err != nil {
				return err
			}
			if req.Observer != nil {
				refiner.SetObserver(req.Observer(i))
			}

			res, err := refiner.Run()
			if err != nil {
				return fmt.Errorf("search %d: %w", i, err)
			}
			results[i] = res
			if req.Restarts > 1 {
				log.Printf("[MultiStart] Search %d/%d finished at dispersion %.6g", i+1, req.Restarts, res.Energy)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best := 0
	for i, res := range results {
		if res.Energy < results[best].Energy {
			best = i
		}
	}
	return &MultiStartResult{Searches: results, Best: best}, nil
}
