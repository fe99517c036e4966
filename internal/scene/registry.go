// Package scene builds the named demos into ready-to-run simulations.
package scene

import (
	"fmt"
	"sort"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/constraint"
	"github.com/san-kum/clothsim/internal/interact"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/render"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/solver"
	"github.com/san-kum/clothsim/internal/topology"
)

const (
	DefaultViewportWidth  = 640
	DefaultViewportHeight = 640
)

// Builder turns a validated config into a simulation.
type Builder func(cfg *config.Config) (*sim.Simulation, error)

type Registry struct {
	demos   map[string]Builder
	solvers *solver.Registry
}

func NewRegistry() *Registry {
	r := &Registry{
		demos:   make(map[string]Builder),
		solvers: solver.NewRegistry(),
	}
	r.demos["hang"] = r.buildHang
	r.demos["drop"] = r.buildDrop
	return r
}

// Register adds or replaces a demo.
func (r *Registry) Register(name string, b Builder) { r.demos[name] = b }

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.demos))
	for name := range r.demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build validates cfg and builds the demo it names.
func (r *Registry) Build(cfg *config.Config) (*sim.Simulation, error) {
	fn, ok := r.demos[cfg.Demo]
	if !ok {
		return nil, fmt.Errorf("unknown demo: %s", cfg.Demo)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := fn(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Demo, err)
	}
	s.Name = cfg.Demo
	return s, nil
}

func (r *Registry) base(cfg *config.Config) (*cloth.System, solver.Solver, error) {
	sys, err := topology.BuildUniformGrid(cfg.Cloth.Width, cfg.Cloth.N, cfg.GridOptions())
	if err != nil {
		return nil, nil, err
	}
	slv, err := r.solvers.Get(cfg.Solver.Name, cfg.SolverConfig())
	if err != nil {
		return nil, nil, err
	}
	return sys, slv, nil
}

func finish(s *sim.Simulation, cfg *config.Config, fix *constraint.PointFix) error {
	policy, err := interact.ParseReleasePolicy(cfg.Release)
	if err != nil {
		return err
	}
	s.SubSteps = cfg.Solver.SubSteps
	s.Iterations = cfg.Solver.Iterations
	s.Attach(fix, render.NewCamera(DefaultViewportWidth, DefaultViewportHeight), policy)
	s.AddMetric(metrics.NewKineticEnergy())
	s.AddMetric(metrics.NewMaxStrain(nil))
	s.AddMetric(metrics.NewPinError(fix))
	return nil
}

func limitedSprings(sys *cloth.System) []int {
	return append(sys.Group(cloth.Structural), sys.Group(cloth.Shear)...)
}

// buildHang: root -> deformation -> pointfix(top corners, also the drag
// target).
func (r *Registry) buildHang(cfg *config.Config) (*sim.Simulation, error) {
	sys, slv, err := r.base(cfg)
	if err != nil {
		return nil, err
	}
	g := constraint.New()
	def := constraint.NewDeformation(limitedSprings(sys), cfg.Constraints.CriticalStrain, cfg.Constraints.Iterations)
	defID := g.AddDeformation(constraint.Root, def)

	fix := constraint.NewPointFix()
	corners := topology.Corners(sys.N)
	for _, idx := range corners[:2] {
		if err := fix.Fix(sys, idx); err != nil {
			return nil, err
		}
	}
	g.AddPointFix(defID, fix)

	s := sim.New(sys, slv, g)
	if err := finish(s, cfg, fix); err != nil {
		return nil, err
	}
	return s, nil
}

// buildDrop: root -> deformation, root -> sphere, root -> pointfix (drag
// only, starts empty). Frames end outside the sphere unless a drag pulls a
// particle in.
func (r *Registry) buildDrop(cfg *config.Config) (*sim.Simulation, error) {
	sys, slv, err := r.base(cfg)
	if err != nil {
		return nil, err
	}
	g := constraint.New()
	def := constraint.NewDeformation(limitedSprings(sys), cfg.Constraints.CriticalStrain, cfg.Constraints.Iterations)
	g.AddDeformation(constraint.Root, def)
	sphere := constraint.NewSphere(cfg.SphereCenter(), cfg.Sphere.Radius)
	g.AddSphere(constraint.Root, sphere)
	fix := constraint.NewPointFix()
	g.AddPointFix(constraint.Root, fix)

	s := sim.New(sys, slv, g)
	if err := finish(s, cfg, fix); err != nil {
		return nil, err
	}
	s.AddMetric(metrics.NewSphereClearance(sphere))
	return s, nil
}

// Sphere returns the first sphere node of s's graph.
func Sphere(s *sim.Simulation) (*constraint.Sphere, bool) {
	var found *constraint.Sphere
	s.Graph.Walk(func(_ constraint.NodeID, n *constraint.Node, _ int) {
		if found == nil && n.Kind == constraint.KindSphere {
			found = n.Sphere
		}
	})
	return found, found != nil
}
