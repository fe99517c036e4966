package viz

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/constraint"
	"github.com/san-kum/clothsim/internal/render"
)

// FitCamera resizes cam to the canvas sub-pixel grid so that picking and
// drawing share one screen space.
func FitCamera(cam *render.Camera, c *Canvas) {
	w, h := c.Pixels()
	if cam.Width != w || cam.Height != h {
		cam.Resize(w, h)
	}
}

// DrawCloth projects the structural springs of sys onto c and returns the
// number of segments drawn.
func DrawCloth(c *Canvas, cam *render.Camera, sys *cloth.System) int {
	type pt struct {
		x, y float64
		ok   bool
	}
	proj := make([]pt, len(sys.Particles))
	for i := range sys.Particles {
		x, y, _, ok := cam.Project(sys.Particles[i].Pos)
		proj[i] = pt{x, y, ok}
	}
	drawn := 0
	for _, si := range sys.Group(cloth.Structural) {
		sp := sys.Springs[si]
		a, b := proj[sp.A], proj[sp.B]
		if !a.ok || !b.ok {
			continue
		}
		c.Segment(a.x, a.y, b.x, b.y)
		drawn++
	}
	return drawn
}

// DrawSphere outlines the sphere's silhouette as seen by cam.
func DrawSphere(c *Canvas, cam *render.Camera, s *constraint.Sphere) bool {
	cx, cy, _, ok := cam.Project(s.Center)
	if !ok {
		return false
	}
	dist := s.Center.Sub(cam.Eye).Len()
	if dist <= s.Radius {
		return false
	}
	focal := float64(cam.Height) / 2 / math.Tan(cam.FovY*math.Pi/360)
	r := focal * s.Radius / math.Sqrt(dist*dist-s.Radius*s.Radius)

	const segments = 48
	px, py := cx+r, cy
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x, y := cx+r*math.Cos(a), cy+r*math.Sin(a)
		c.Segment(px, py, x, y)
		px, py = x, y
	}
	return true
}

// DrawPins marks every pinned particle and returns how many were visible.
func DrawPins(c *Canvas, cam *render.Camera, sys *cloth.System, fix *constraint.PointFix) int {
	if fix == nil {
		return 0
	}
	n := 0
	for _, p := range fix.Pins() {
		if p.Index < 0 || p.Index >= len(sys.Particles) {
			continue
		}
		if x, y, _, ok := cam.Project(sys.Particles[p.Index].Pos); ok {
			c.Mark(int(x), int(y))
			n++
		}
	}
	return n
}
