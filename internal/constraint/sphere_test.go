package constraint

import (
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
)

func TestSphereProjectsOntoSurface(t *testing.T) {
	sys := grid(t, 9)
	s := NewSphere(cloth.Vec3{0, 0, -0.2}, 0.64)
	outside := map[int]cloth.Vec3{}
	for i, p := range sys.Particles {
		if s.Distance(p.Pos) >= 0 {
			outside[i] = p.Pos
		}
	}

	s.satisfy(sys)

	for i, p := range sys.Particles {
		if d := s.Distance(p.Pos); d < -1e-12 {
			t.Errorf("particle %d still inside by %g", i, -d)
		}
		if orig, ok := outside[i]; ok && p.Pos != orig {
			t.Errorf("outside particle %d moved", i)
		}
	}
	if len(outside) == len(sys.Particles) {
		t.Fatal("test sphere does not intersect the grid")
	}
}

func TestSphereRadialDirection(t *testing.T) {
	sys := chain(0.1)
	s := NewSphere(cloth.Vec3{}, 1)
	s.satisfy(sys)
	if p := sys.Particles[0].Pos; math.Abs(p.X()-1) > 1e-12 || p.Y() != 0 || p.Z() != 0 {
		t.Errorf("projected to %v, want (1,0,0)", p)
	}
}

func TestSphereCenterParticle(t *testing.T) {
	sys := chain(0)
	s := NewSphere(cloth.Vec3{}, 0.5)
	s.satisfy(sys)
	if p := sys.Particles[0].Pos; p != (cloth.Vec3{0, 0, 0.5}) {
		t.Errorf("center particle projected to %v", p)
	}
}
