package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulations concurrently. Each run builds its
// own simulation so no particle state is shared between goroutines.
type Ensemble struct {
	build   func(i int) (*Simulation, error)
	numRuns int
	limit   int
}

func NewEnsemble(build func(i int) (*Simulation, error), numRuns int) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns}
}

// SetLimit bounds the number of simulations in flight; n <= 0 means no limit.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

func (e *Ensemble) Run(ctx context.Context, frames, sampleEvery int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		i := i
		g.Go(func() error {
			s, err := e.build(i)
			if err != nil {
				return fmt.Errorf("build run %d: %w", i, err)
			}
			res, err := s.Run(ctx, frames, sampleEvery)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
