package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/scene"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/solver"
	"github.com/san-kum/clothsim/internal/topology"
)

func TestDominantFrequency(t *testing.T) {
	const (
		dt   = 0.01
		freq = 5.0
	)
	data := make([]float64, 400)
	for i := range data {
		data[i] = 2 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	assert.InDelta(t, freq, DominantFrequency(data, dt), 0.3)
}

func TestPowerSpectrumDegenerate(t *testing.T) {
	assert.Nil(t, PowerSpectrum([]float64{1}))
	assert.Equal(t, 0.0, DominantFrequency(make([]float64, 64), 0.01), "a flat signal has no dominant frequency")
	assert.Equal(t, 0.0, DominantFrequency([]float64{1, 2, 3}, 0))
}

func TestPhasePortrait(t *testing.T) {
	traj := []cloth.Vec3{{0, 0, 0}, {0, 0, -1}, {0, 0, -2}, {0, 0, -3}}
	times := []float64{0, 1, 2, 3}

	p := PhasePortrait(traj, times, 2)
	require.NotNil(t, p)
	require.Len(t, p.Points, 4)
	for _, pt := range p.Points {
		assert.InDelta(t, -1, pt.Y, 1e-12)
	}

	art := p.ASCII(20, 5)
	assert.Equal(t, 5, strings.Count(art, "\n"))
	assert.Contains(t, art, "•")

	assert.Nil(t, PhasePortrait(traj, times[:2], 2))
	assert.Nil(t, PhasePortrait(traj, times, 3))
	assert.Equal(t, "", (*Portrait)(nil).ASCII(10, 10))
}

func TestComponent(t *testing.T) {
	traj := []cloth.Vec3{{1, 2, 3}, {4, 5, 6}}
	assert.Equal(t, []float64{2, 5}, Component(traj, 1))
}

func TestConvergence(t *testing.T) {
	sys, err := topology.BuildUniformGrid(1.0, 5, topology.DefaultOptions())
	require.NoError(t, err)
	for i := range sys.Particles {
		sys.Particles[i].Vel = cloth.Vec3{0, 0, float64(i%3) - 1}
	}

	errs := Convergence(sys, func() solver.Solver { return solver.NewJacobi() }, []int{1, 10, 100})
	require.Len(t, errs, 3)
	assert.Greater(t, errs[0], errs[1])
	assert.Greater(t, errs[1], errs[2])

	assert.InDelta(t, 0, StepError(sys, solver.NewDirect(), ReferenceIterations), 1e-12)
}

func TestSweep(t *testing.T) {
	reg := scene.NewRegistry()
	build := func(k float64) (*sim.Simulation, error) {
		cfg := config.DefaultConfig()
		cfg.Cloth.N = 5
		cfg.Cloth.Stiffness = k
		return reg.Build(cfg)
	}

	points, err := Sweep(context.Background(), []float64{50, 500}, build, 30, "max_strain")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 50.0, points[0].Param)
	assert.Greater(t, points[0].Value, 0.0)

	_, err = Sweep(context.Background(), []float64{50}, build, 1, "nope")
	assert.Error(t, err)
}
