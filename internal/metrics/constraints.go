package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/constraint"
)

// SphereClearance records the smallest signed distance between any particle
// and the sphere surface. Negative values mean penetration.
type SphereClearance struct {
	name   string
	sphere *constraint.Sphere
	min    float64
}

func NewSphereClearance(s *constraint.Sphere) *SphereClearance {
	return &SphereClearance{name: "sphere_clearance", sphere: s, min: math.Inf(1)}
}

func (c *SphereClearance) Name() string { return c.name }

func (c *SphereClearance) Observe(sys *cloth.System, t float64) {
	for i := range sys.Particles {
		c.min = math.Min(c.min, c.sphere.Distance(sys.Particles[i].Pos))
	}
}

func (c *SphereClearance) Value() float64 {
	if math.IsInf(c.min, 1) {
		return 0
	}
	return c.min
}

func (c *SphereClearance) Reset() { c.min = math.Inf(1) }

// PinError records the largest distance between a pinned particle and its
// target.
type PinError struct {
	name string
	fix  *constraint.PointFix
	max  float64
}

func NewPinError(fix *constraint.PointFix) *PinError {
	return &PinError{name: "pin_error", fix: fix}
}

func (p *PinError) Name() string { return p.name }

func (p *PinError) Observe(sys *cloth.System, t float64) {
	for _, pin := range p.fix.Pins() {
		p.max = math.Max(p.max, sys.Particles[pin.Index].Pos.Sub(pin.Target).Len())
	}
}

func (p *PinError) Value() float64 { return p.max }

func (p *PinError) Reset() { p.max = 0 }
