package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/clothsim/internal/sim"
)

type SweepPoint struct {
	Param float64
	Value float64
}

// Sweep builds one simulation per parameter value, runs them concurrently
// for frames frames and reports the named metric of each run.
func Sweep(ctx context.Context, values []float64, build func(v float64) (*sim.Simulation, error), frames int, metric string) ([]SweepPoint, error) {
	e := sim.NewEnsemble(func(i int) (*sim.Simulation, error) {
		return build(values[i])
	}, len(values))

	results, err := e.Run(ctx, frames, frames)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(values))
	for i, r := range results {
		v, ok := r.Metrics[metric]
		if !ok {
			return nil, fmt.Errorf("metric %s not recorded", metric)
		}
		points[i] = SweepPoint{Param: values[i], Value: v}
	}
	return points, nil
}
