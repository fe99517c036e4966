package analysis

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/solver"
)

// ReferenceIterations is the number of direct local/global passes used for
// the reference step, enough to reach the fixed point of the step.
const ReferenceIterations = 200

// StepError advances a copy of sys by one step with slv and returns the
// largest particle distance from the converged direct solution of the same
// step.
func StepError(sys *cloth.System, slv solver.Solver, iterations int) float64 {
	ref := sys.Clone()
	solver.NewDirect().Solve(ref, ReferenceIterations)

	got := sys.Clone()
	slv.Solve(got, iterations)

	var worst float64
	for i := range got.Particles {
		worst = math.Max(worst, got.Particles[i].Pos.Sub(ref.Particles[i].Pos).Len())
	}
	return worst
}

// Convergence returns StepError for each sweep count, building a fresh
// solver per entry.
func Convergence(sys *cloth.System, build func() solver.Solver, iterations []int) []float64 {
	out := make([]float64, len(iterations))
	for i, it := range iterations {
		out[i] = StepError(sys, build(), it)
	}
	return out
}
