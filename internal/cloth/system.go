package cloth

import (
	"fmt"
	"math"
)

type System struct {
	Particles []Particle
	Springs   []Spring
	Params    Params

	// N is the grid side length; zero for systems not built as a grid.
	N int
}

// Validate checks every structural invariant of the system.
func (s *System) Validate() error {
	if len(s.Particles) == 0 {
		return &BuildError{Op: "validate", Err: ErrEmptySystem}
	}
	if s.Params.TimeStep <= 0 {
		return &BuildError{Op: "validate", Detail: fmt.Sprintf("time step %g", s.Params.TimeStep), Err: ErrParameterBounds}
	}
	if s.Params.Damping <= 0 || s.Params.Damping > 1 {
		return &BuildError{Op: "validate", Detail: fmt.Sprintf("damping %g", s.Params.Damping), Err: ErrParameterBounds}
	}
	n := len(s.Particles)
	for i, sp := range s.Springs {
		if sp.A < 0 || sp.A >= n || sp.B < 0 || sp.B >= n || sp.A == sp.B {
			return &BuildError{Op: "validate", Detail: fmt.Sprintf("spring %d (%d,%d)", i, sp.A, sp.B), Err: ErrSpringIndex}
		}
		if !(sp.Rest > 0) || !(sp.Stiffness > 0) {
			return &BuildError{Op: "validate", Detail: fmt.Sprintf("spring %d rest %g stiffness %g", i, sp.Rest, sp.Stiffness), Err: ErrParameterBounds}
		}
	}
	for i, p := range s.Particles {
		if p.InvMass < 0 || math.IsNaN(p.InvMass) || math.IsInf(p.InvMass, 0) {
			return &BuildError{Op: "validate", Detail: fmt.Sprintf("particle %d inverse mass %g", i, p.InvMass), Err: ErrParameterBounds}
		}
	}
	return nil
}

func (s *System) Index(row, col int) int { return row*s.N + col }

// Group returns the indices of all springs of the given kind, in build order.
func (s *System) Group(kind SpringKind) []int {
	idx := make([]int, 0)
	for i, sp := range s.Springs {
		if sp.Kind == kind {
			idx = append(idx, i)
		}
	}
	return idx
}

// Positions returns a copy of the particle positions.
func (s *System) Positions() []Vec3 {
	out := make([]Vec3, len(s.Particles))
	for i := range s.Particles {
		out[i] = s.Particles[i].Pos
	}
	return out
}

func (s *System) SetPositions(pos []Vec3) {
	for i := range s.Particles {
		if i < len(pos) {
			s.Particles[i].Pos = pos[i]
		}
	}
}

func (s *System) Length(spring int) float64 {
	sp := s.Springs[spring]
	return s.Particles[sp.B].Pos.Sub(s.Particles[sp.A].Pos).Len()
}

// Strain returns |length/rest - 1| for the given spring.
func (s *System) Strain(spring int) float64 {
	return math.Abs(s.Length(spring)/s.Springs[spring].Rest - 1)
}

func (s *System) TotalMass() float64 {
	total := 0.0
	for i := range s.Particles {
		total += s.Particles[i].Mass()
	}
	return total
}

func (s *System) IsValid() bool {
	for i := range s.Particles {
		for _, v := range s.Particles[i].Pos {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the system.
func (s *System) Clone() *System {
	c := &System{
		Particles: make([]Particle, len(s.Particles)),
		Springs:   make([]Spring, len(s.Springs)),
		Params:    s.Params,
		N:         s.N,
	}
	copy(c.Particles, s.Particles)
	copy(c.Springs, s.Springs)
	return c
}
