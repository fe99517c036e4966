package constraint

import (
	"github.com/san-kum/clothsim/internal/cloth"
)

// Sphere keeps particles outside a solid sphere. Penetrating particles are
// moved radially onto the surface; velocities are left alone, so contact is
// inelastic.
type Sphere struct {
	Center cloth.Vec3
	Radius float64
}

func NewSphere(center cloth.Vec3, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// Distance returns the signed distance of p from the sphere surface.
func (s *Sphere) Distance(p cloth.Vec3) float64 {
	return p.Sub(s.Center).Len() - s.Radius
}

func (s *Sphere) satisfy(sys *cloth.System) {
	r2 := s.Radius * s.Radius
	for i := range sys.Particles {
		p := &sys.Particles[i]
		off := p.Pos.Sub(s.Center)
		if off.LenSqr() >= r2 {
			continue
		}
		l := off.Len()
		if l < 1e-12 {
			p.Pos = s.Center.Add(cloth.Vec3{0, 0, s.Radius})
			continue
		}
		p.Pos = s.Center.Add(off.Mul(s.Radius / l))
	}
}
