package constraint

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
)

func chain(positions ...float64) *cloth.System {
	sys := &cloth.System{Params: cloth.DefaultParams()}
	for _, x := range positions {
		sys.Particles = append(sys.Particles, cloth.Particle{Pos: cloth.Vec3{x, 0, 0}, InvMass: 1})
	}
	for i := 0; i+1 < len(positions); i++ {
		sys.Springs = append(sys.Springs, cloth.Spring{A: i, B: i + 1, Rest: 1, Stiffness: 1})
	}
	return sys
}

func TestDeformationBoundAndMonotone(t *testing.T) {
	sys := chain(0, 1, 3)
	iters := 10
	d := NewDeformation([]int{0, 1}, 0.1, iters)
	d.satisfy(sys)

	st := d.Stats()
	if math.Abs(st.Entry()-0.9) > 1e-12 {
		t.Fatalf("entry excess = %g, want 0.9", st.Entry())
	}
	for i := 1; i < len(st.MaxExcess); i++ {
		if st.MaxExcess[i] > st.MaxExcess[i-1]+1e-12 {
			t.Errorf("excess increased at sweep %d: %v", i, st.MaxExcess)
		}
	}
	if bound := st.Entry() / float64(iters); st.Final() > bound {
		t.Errorf("final excess %g above bound %g", st.Final(), bound)
	}
	for _, i := range d.Springs {
		if s := sys.Strain(i); s > d.CriticalStrain+st.Final()+1e-9 {
			t.Errorf("spring %d strain %g", i, s)
		}
	}
}

func TestDeformationPerturbedGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		sys := grid(t, 9)
		for i := range sys.Particles {
			jitter := cloth.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}
			sys.Particles[i].Pos = sys.Particles[i].Pos.Add(jitter.Mul(0.1))
		}
		springs := append(sys.Group(cloth.Structural), sys.Group(cloth.Shear)...)
		d := NewDeformation(springs, 0.1, 10)
		d.satisfy(sys)

		st := d.Stats()
		for i := 1; i < len(st.MaxExcess); i++ {
			if st.MaxExcess[i] > st.MaxExcess[i-1] {
				t.Fatalf("trial %d: excess increased at sweep %d: %v", trial, i, st.MaxExcess)
			}
		}
		if got := d.MaxExcess(sys); math.Abs(got-st.Final()) > 1e-12 {
			t.Errorf("trial %d: left excess %g, stats report %g", trial, got, st.Final())
		}
		if st.Final() > st.Entry() {
			t.Errorf("trial %d: final excess %g above entry %g", trial, st.Final(), st.Entry())
		}
	}
}

func TestDeformationCompression(t *testing.T) {
	sys := chain(0, 0.5)
	d := NewDeformation([]int{0}, 0.1, 5)
	d.satisfy(sys)
	if s := sys.Strain(0); math.Abs(s-0.1) > 1e-9 {
		t.Errorf("strain after projection = %g, want 0.1", s)
	}
	if math.Abs(sys.Particles[0].Pos.X()+sys.Particles[1].Pos.X()-0.5) > 1e-12 {
		t.Error("equal masses should move symmetrically")
	}
}

func TestDeformationRespectsInverseMass(t *testing.T) {
	sys := chain(0, 2)
	sys.Particles[0].InvMass = 0
	d := NewDeformation([]int{0}, 0.1, 5)
	d.satisfy(sys)
	if sys.Particles[0].Pos != (cloth.Vec3{}) {
		t.Errorf("immovable endpoint moved to %v", sys.Particles[0].Pos)
	}
	if math.Abs(sys.Particles[1].Pos.X()-1.1) > 1e-9 {
		t.Errorf("free endpoint at %g, want 1.1", sys.Particles[1].Pos.X())
	}
}

func TestDeformationWithinBandIsUntouched(t *testing.T) {
	sys := chain(0, 1.05, 2.0)
	before := sys.Positions()
	d := NewDeformation([]int{0, 1}, 0.1, 5)
	d.satisfy(sys)
	if d.Stats().Sweeps != 0 {
		t.Errorf("expected no sweeps, got %d", d.Stats().Sweeps)
	}
	for i := range before {
		if sys.Particles[i].Pos != before[i] {
			t.Errorf("particle %d moved", i)
		}
	}
}

func TestDeformationBudgetLimited(t *testing.T) {
	sys := grid(t, 5)
	sys.Particles[12].Pos[2] = 0.6
	springs := append(sys.Group(cloth.Structural), sys.Group(cloth.Shear)...)
	d := NewDeformation(springs, 0.05, 1)
	d.satisfy(sys)

	st := d.Stats()
	if st.Sweeps != 1 || len(st.MaxExcess) != 2 {
		t.Fatalf("expected exactly one sweep, got %+v", st)
	}
	if !(st.Final() < st.Entry()) {
		t.Errorf("sweep did not reduce excess: %v", st.MaxExcess)
	}
}
