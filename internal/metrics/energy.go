package metrics

import (
	"github.com/san-kum/clothsim/internal/cloth"
)

// KineticEnergy reports the kinetic energy of the last observed frame and
// keeps the per-frame series.
type KineticEnergy struct {
	name   string
	series []float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(sys *cloth.System, t float64) {
	k.series = append(k.series, Kinetic(sys))
}

func (k *KineticEnergy) Value() float64 {
	if len(k.series) == 0 {
		return 0
	}
	return k.series[len(k.series)-1]
}

// Series returns the observed values, one per frame.
func (k *KineticEnergy) Series() []float64 { return k.series }

func (k *KineticEnergy) Reset() { k.series = k.series[:0] }

// Energy averages kinetic plus gravitational potential energy over the run.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(sys *cloth.System, t float64) {
	e.totalEnergy += Kinetic(sys) + Potential(sys)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// Kinetic returns 1/2 sum m v^2 over the movable particles.
func Kinetic(sys *cloth.System) float64 {
	var ke float64
	for i := range sys.Particles {
		p := &sys.Particles[i]
		if p.InvMass == 0 {
			continue
		}
		ke += 0.5 * p.Mass() * p.Vel.Dot(p.Vel)
	}
	return ke
}

// Potential returns sum m g z, measured from z = 0.
func Potential(sys *cloth.System) float64 {
	var pe float64
	for i := range sys.Particles {
		p := &sys.Particles[i]
		if p.InvMass == 0 {
			continue
		}
		pe += p.Mass() * sys.Params.Gravity * p.Pos.Z()
	}
	return pe
}
