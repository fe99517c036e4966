package cloth

import (
	"github.com/go-gl/mathgl/mgl64"
)

type Vec3 = mgl64.Vec3

type Particle struct {
	Pos     Vec3
	Prev    Vec3
	Vel     Vec3
	Force   Vec3
	InvMass float64
	Damping float64
}

// Mass returns 1/InvMass, or 0 for an immovable particle.
func (p *Particle) Mass() float64 {
	if p.InvMass == 0 {
		return 0
	}
	return 1 / p.InvMass
}

type SpringKind int

const (
	Structural SpringKind = iota
	Shear
	Bend
)

func (k SpringKind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	default:
		return "unknown"
	}
}

// Spring links particles A and B (A < B). Springs never change after the
// system is built.
type Spring struct {
	A, B      int
	Rest      float64
	Stiffness float64
	Kind      SpringKind
}

type Params struct {
	TimeStep float64 // h
	Damping  float64 // a, multiplies the derived velocity
	Gravity  float64 // g
}

func DefaultParams() Params {
	return Params{
		TimeStep: DefaultTimeStep,
		Damping:  DefaultDamping,
		Gravity:  DefaultGravity,
	}
}

const (
	DefaultTimeStep = 1.0 / 120.0
	DefaultDamping  = 0.995
	DefaultGravity  = 9.81
)
