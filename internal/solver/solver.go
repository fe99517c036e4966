package solver

import (
	"fmt"
	"sort"

	"github.com/san-kum/clothsim/internal/cloth"
)

type Solver interface {
	Name() string
	// Solve advances sys by one time step using the given number of sweeps.
	Solve(sys *cloth.System, iterations int)
}

const (
	DefaultIterations = 5
	DefaultRho        = 0.9
	DefaultGamma      = 0.9
	DefaultDelay      = 2
)

// Config holds the acceleration schedule for the Chebyshev variant.
type Config struct {
	Rho   float64 `yaml:"rho"`
	Gamma float64 `yaml:"gamma"`
	Delay int     `yaml:"delay"`
}

func DefaultConfig() Config {
	return Config{Rho: DefaultRho, Gamma: DefaultGamma, Delay: DefaultDelay}
}

type Registry struct {
	solvers map[string]func(Config) Solver
}

func NewRegistry() *Registry {
	r := &Registry{solvers: make(map[string]func(Config) Solver)}
	r.solvers["jacobi"] = func(Config) Solver { return NewJacobi() }
	r.solvers["chebyshev"] = func(cfg Config) Solver { return NewChebyshev(cfg.Rho, cfg.Gamma, cfg.Delay) }
	r.solvers["direct"] = func(Config) Solver { return NewDirect() }
	return r
}

func (r *Registry) Get(name string, cfg Config) (Solver, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// workspace caches per-system buffers between calls.
type workspace struct {
	y     []cloth.Vec3
	cur   []cloth.Vec3
	next  []cloth.Vec3
	last  []cloth.Vec3
	diag  []float64
	inert []float64
	inv   []float64
	h     float64
	sys   *cloth.System
}

// massChanged reports whether a pin was added or released since the last
// rebuild.
func (w *workspace) massChanged(sys *cloth.System) bool {
	for i := range sys.Particles {
		if sys.Particles[i].InvMass != w.inv[i] {
			return true
		}
	}
	return false
}

// prepare refreshes the inertial targets and reports whether the cached
// diagonal was rebuilt.
func (w *workspace) prepare(sys *cloth.System) bool {
	n := len(sys.Particles)
	h := sys.Params.TimeStep
	rebuilt := false
	if w.sys != sys || len(w.y) != n || w.h != h || w.massChanged(sys) {
		rebuilt = true
		w.y = make([]cloth.Vec3, n)
		w.cur = make([]cloth.Vec3, n)
		w.next = make([]cloth.Vec3, n)
		w.last = make([]cloth.Vec3, n)
		w.diag = make([]float64, n)
		w.inert = make([]float64, n)
		w.inv = make([]float64, n)
		for i := range sys.Particles {
			w.inv[i] = sys.Particles[i].InvMass
			w.inert[i] = sys.Particles[i].Mass() / (h * h)
			w.diag[i] = w.inert[i]
		}
		for _, sp := range sys.Springs {
			w.diag[sp.A] += sp.Stiffness
			w.diag[sp.B] += sp.Stiffness
		}
		w.sys = sys
		w.h = h
	}

	h2 := h * h
	for i := range sys.Particles {
		p := &sys.Particles[i]
		if p.InvMass == 0 {
			w.y[i] = p.Pos
			continue
		}
		w.y[i] = p.Pos.Add(p.Vel.Mul(h)).Add(p.Force.Mul(h2 * p.InvMass))
	}
	return rebuilt
}

// projection returns the rest-length vector of a spring along a - b.
func projection(a, b cloth.Vec3, rest float64) cloth.Vec3 {
	dir := a.Sub(b)
	l := dir.Len()
	if l < 1e-12 {
		return cloth.Vec3{}
	}
	return dir.Mul(rest / l)
}

// finish writes the solved positions back and derives velocities.
func finish(sys *cloth.System, x []cloth.Vec3) {
	h := sys.Params.TimeStep
	a := sys.Params.Damping
	for i := range sys.Particles {
		p := &sys.Particles[i]
		if p.InvMass == 0 {
			p.Vel = cloth.Vec3{}
			p.Prev = p.Pos
			continue
		}
		p.Vel = x[i].Sub(p.Prev).Mul(a * (1 - p.Damping) / h)
		p.Pos = x[i]
		p.Prev = x[i]
	}
}
