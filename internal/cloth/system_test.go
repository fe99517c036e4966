package cloth

import (
	"errors"
	"math"
	"testing"
)

func pair() *System {
	return &System{
		Particles: []Particle{
			{Pos: Vec3{0, 0, 0}, InvMass: 1},
			{Pos: Vec3{2, 0, 0}, InvMass: 1},
		},
		Springs: []Spring{{A: 0, B: 1, Rest: 1, Stiffness: 10, Kind: Structural}},
		Params:  DefaultParams(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *System)
		want   error
	}{
		{"valid", func(s *System) {}, nil},
		{"empty", func(s *System) { s.Particles = nil }, ErrEmptySystem},
		{"zero dt", func(s *System) { s.Params.TimeStep = 0 }, ErrParameterBounds},
		{"damping above one", func(s *System) { s.Params.Damping = 1.5 }, ErrParameterBounds},
		{"endpoint out of range", func(s *System) { s.Springs[0].B = 7 }, ErrSpringIndex},
		{"degenerate spring", func(s *System) { s.Springs[0].B = 0 }, ErrSpringIndex},
		{"zero stiffness", func(s *System) { s.Springs[0].Stiffness = 0 }, ErrParameterBounds},
		{"zero rest", func(s *System) { s.Springs[0].Rest = 0 }, ErrParameterBounds},
		{"negative inverse mass", func(s *System) { s.Particles[1].InvMass = -1 }, ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pair()
			tt.mutate(s)
			err := s.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
			var be *BuildError
			if !errors.As(err, &be) {
				t.Errorf("expected *BuildError, got %T", err)
			}
		})
	}
}

func TestStrain(t *testing.T) {
	s := pair()
	if got := s.Strain(0); math.Abs(got-1) > 1e-12 {
		t.Errorf("Strain() = %v, want 1", got)
	}
	s.Particles[1].Pos = Vec3{0.5, 0, 0}
	if got := s.Strain(0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Strain() = %v, want 0.5", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := pair()
	c := s.Clone()
	c.Particles[0].Pos = Vec3{9, 9, 9}
	if s.Particles[0].Pos == c.Particles[0].Pos {
		t.Error("Clone shares particle storage")
	}
}

func TestBuildErrorMessage(t *testing.T) {
	err := &BuildError{Op: "build", Detail: "n=4", Err: ErrGridSize}
	want := "build: cloth: grid size must be odd and at least 3 (n=4)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestGroupAndMass(t *testing.T) {
	s := pair()
	s.Springs = append(s.Springs, Spring{A: 0, B: 1, Rest: 1, Stiffness: 1, Kind: Shear})
	if g := s.Group(Shear); len(g) != 1 || g[0] != 1 {
		t.Errorf("Group(Shear) = %v", g)
	}
	s.Particles[0].InvMass = 0
	if m := s.TotalMass(); m != 1 {
		t.Errorf("TotalMass() = %v, want 1", m)
	}
}
