package constraint

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

const (
	DefaultCriticalStrain = 0.1
	DefaultIterations     = 10

	// strainEpsilon absorbs rounding after a spring is projected to the band edge.
	strainEpsilon = 1e-9
)

// Deformation limits the strain of a subset of springs to CriticalStrain.
type Deformation struct {
	Springs        []int
	CriticalStrain float64
	Iterations     int

	stats Stats
	best  []cloth.Vec3
}

// Stats describes the last satisfy call of a deformation node. MaxExcess[0]
// is the worst strain excess on entry, followed by one entry per sweep
// holding the excess of the best state reached so far. The node leaves the
// particles in that best state.
type Stats struct {
	Sweeps    int
	MaxExcess []float64
}

func (s Stats) Entry() float64 {
	if len(s.MaxExcess) == 0 {
		return 0
	}
	return s.MaxExcess[0]
}

func (s Stats) Final() float64 {
	if len(s.MaxExcess) == 0 {
		return 0
	}
	return s.MaxExcess[len(s.MaxExcess)-1]
}

func NewDeformation(springs []int, criticalStrain float64, iterations int) *Deformation {
	return &Deformation{
		Springs:        springs,
		CriticalStrain: criticalStrain,
		Iterations:     iterations,
		stats:          Stats{MaxExcess: make([]float64, 0, iterations+1)},
	}
}

func (d *Deformation) Stats() Stats { return d.stats }

// MaxExcess returns the largest amount by which a tracked spring's strain
// exceeds the critical strain, or 0 when all are within the band.
func (d *Deformation) MaxExcess(sys *cloth.System) float64 {
	worst := 0.0
	for _, i := range d.Springs {
		worst = math.Max(worst, sys.Strain(i)-d.CriticalStrain)
	}
	return worst
}

func (d *Deformation) satisfy(sys *cloth.System) {
	d.stats.Sweeps = 0
	d.stats.MaxExcess = append(d.stats.MaxExcess[:0], d.MaxExcess(sys))
	if d.stats.MaxExcess[0] <= strainEpsilon {
		return
	}

	best := d.stats.MaxExcess[0]
	bestAt := -1
	d.save(sys)
	lo, hi := 1-d.CriticalStrain, 1+d.CriticalStrain
	for it := 0; it < d.Iterations; it++ {
		violated := false
		for _, i := range d.Springs {
			sp := sys.Springs[i]
			pa, pb := &sys.Particles[sp.A], &sys.Particles[sp.B]
			delta := pb.Pos.Sub(pa.Pos)
			l := delta.Len()
			if l < 1e-12 {
				continue
			}

			ratio := l / sp.Rest
			var target float64
			switch {
			case ratio > hi+strainEpsilon:
				target = sp.Rest * hi
			case ratio < lo-strainEpsilon:
				target = sp.Rest * lo
			default:
				continue
			}
			violated = true

			w := pa.InvMass + pb.InvMass
			if w == 0 {
				continue
			}
			corr := delta.Mul((l - target) / (l * w))
			pa.Pos = pa.Pos.Add(corr.Mul(pa.InvMass))
			pb.Pos = pb.Pos.Sub(corr.Mul(pb.InvMass))
		}
		if !violated {
			break
		}
		d.stats.Sweeps++
		if excess := d.MaxExcess(sys); excess < best {
			best, bestAt = excess, it
			d.save(sys)
		}
		d.stats.MaxExcess = append(d.stats.MaxExcess, best)
	}
	if bestAt != d.stats.Sweeps-1 {
		d.restore(sys)
	}
}

// save records the positions of every particle the node can move.
func (d *Deformation) save(sys *cloth.System) {
	if len(d.best) != len(sys.Particles) {
		d.best = make([]cloth.Vec3, len(sys.Particles))
	}
	for _, i := range d.Springs {
		sp := sys.Springs[i]
		d.best[sp.A] = sys.Particles[sp.A].Pos
		d.best[sp.B] = sys.Particles[sp.B].Pos
	}
}

func (d *Deformation) restore(sys *cloth.System) {
	for _, i := range d.Springs {
		sp := sys.Springs[i]
		sys.Particles[sp.A].Pos = d.best[sp.A]
		sys.Particles[sp.B].Pos = d.best[sp.B]
	}
}
