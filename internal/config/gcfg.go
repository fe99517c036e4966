package config

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

// iniFile mirrors Config in the flat section layout gcfg understands:
//
//	[sim]
//	demo = drop
//	[cloth]
//	n = 21
//	[sphere]
//	centerz = -1
type iniFile struct {
	Sim struct {
		Demo    string
		Frames  int
		Release string
	}
	Cloth struct {
		N         int
		Width     float64
		H         float64
		Stiffness float64
		Mass      float64
		Damping   float64
		Gravity   float64
		Slack     float64
		Bend      bool
	}
	Solver struct {
		Name       string
		Iterations int
		SubSteps   int
		Rho        float64
		Gamma      float64
		Delay      int
	}
	Constraints struct {
		CriticalStrain float64
		Iterations     int
	}
	Sphere struct {
		CenterX, CenterY, CenterZ float64
		Radius                    float64
	}
}

// loadGcfg seeds the ini layout with cfg so unset variables keep their
// current values, then copies the result back.
func loadGcfg(path string, cfg *Config) error {
	var f iniFile
	f.Sim.Demo, f.Sim.Frames, f.Sim.Release = cfg.Demo, cfg.Frames, cfg.Release

	c := &f.Cloth
	c.N, c.Width, c.H = cfg.Cloth.N, cfg.Cloth.Width, cfg.Cloth.TimeStep
	c.Stiffness, c.Mass, c.Damping = cfg.Cloth.Stiffness, cfg.Cloth.Mass, cfg.Cloth.Damping
	c.Gravity, c.Slack, c.Bend = cfg.Cloth.Gravity, cfg.Cloth.Slack, cfg.Cloth.Bend

	s := &f.Solver
	s.Name, s.Iterations, s.SubSteps = cfg.Solver.Name, cfg.Solver.Iterations, cfg.Solver.SubSteps
	s.Rho, s.Gamma, s.Delay = cfg.Solver.Rho, cfg.Solver.Gamma, cfg.Solver.Delay

	f.Constraints.CriticalStrain = cfg.Constraints.CriticalStrain
	f.Constraints.Iterations = cfg.Constraints.Iterations

	sp := &f.Sphere
	sp.CenterX, sp.CenterY, sp.CenterZ = cfg.Sphere.Center[0], cfg.Sphere.Center[1], cfg.Sphere.Center[2]
	sp.Radius = cfg.Sphere.Radius

	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.Demo, cfg.Frames, cfg.Release = f.Sim.Demo, f.Sim.Frames, f.Sim.Release
	cfg.Cloth = ClothConfig{
		N: c.N, Width: c.Width, TimeStep: c.H, Stiffness: c.Stiffness, Mass: c.Mass,
		Damping: c.Damping, Gravity: c.Gravity, Slack: c.Slack, Bend: c.Bend,
	}
	cfg.Solver = SolverConfig{
		Name: s.Name, Iterations: s.Iterations, SubSteps: s.SubSteps,
		Rho: s.Rho, Gamma: s.Gamma, Delay: s.Delay,
	}
	cfg.Constraints = ConstraintConfig{
		CriticalStrain: f.Constraints.CriticalStrain,
		Iterations:     f.Constraints.Iterations,
	}
	cfg.Sphere = SphereConfig{Center: [3]float64{sp.CenterX, sp.CenterY, sp.CenterZ}, Radius: sp.Radius}
	return nil
}
