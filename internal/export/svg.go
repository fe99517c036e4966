// Package export renders cloth state to SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/constraint"
	"github.com/san-kum/clothsim/internal/render"
)

type MeshOptions struct {
	Stroke     string
	Background string
	Springs    []cloth.SpringKind // default: structural only
	Sphere     *constraint.Sphere
	Fix        *constraint.PointFix
}

func (o *MeshOptions) defaults() {
	if o.Stroke == "" {
		o.Stroke = "#00ffff"
	}
	if o.Background == "" {
		o.Background = "#0a0a0a"
	}
	if len(o.Springs) == 0 {
		o.Springs = []cloth.SpringKind{cloth.Structural}
	}
}

func header(sb *strings.Builder, w, h int, bg string) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, bg)
}

// MeshToSVG draws the springs of sys as seen through cam, one <line> per
// spring, at the camera's viewport size.
func MeshToSVG(cam *render.Camera, sys *cloth.System, opts MeshOptions) string {
	opts.defaults()
	var sb strings.Builder
	header(&sb, cam.Width, cam.Height, opts.Background)

	if s := opts.Sphere; s != nil {
		if cx, cy, _, ok := cam.Project(s.Center); ok {
			d := s.Center.Sub(cam.Eye).Len()
			if d > s.Radius {
				focal := float64(cam.Height) / 2 / math.Tan(cam.FovY*math.Pi/360)
				r := focal * s.Radius / math.Sqrt(d*d-s.Radius*s.Radius)
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#333344"/>
`, cx, cy, r)
			}
		}
	}

	type pt struct {
		x, y float64
		ok   bool
	}
	proj := make([]pt, len(sys.Particles))
	for i := range sys.Particles {
		x, y, _, ok := cam.Project(sys.Particles[i].Pos)
		proj[i] = pt{x, y, ok}
	}

	fmt.Fprintf(&sb, `<g stroke="%s" stroke-width="1">
`, opts.Stroke)
	for _, kind := range opts.Springs {
		for _, si := range sys.Group(kind) {
			sp := sys.Springs[si]
			a, b := proj[sp.A], proj[sp.B]
			if !a.ok || !b.ok {
				continue
			}
			fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, a.x, a.y, b.x, b.y)
		}
	}
	sb.WriteString("</g>\n")

	if opts.Fix != nil {
		sb.WriteString(`<g fill="#ffff00">` + "\n")
		for _, p := range opts.Fix.Pins() {
			if p.Index < 0 || p.Index >= len(proj) || !proj[p.Index].ok {
				continue
			}
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3"/>
`, proj[p.Index].x, proj[p.Index].y)
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG plots one particle's path projected onto two world axes
// (0=x, 1=y, 2=z), fitted to the image with 10% padding.
func TrajectoryToSVG(traj []cloth.Vec3, axisX, axisY, width, height int, strokeColor string) string {
	if len(traj) < 2 || axisX < 0 || axisX > 2 || axisY < 0 || axisY > 2 {
		return ""
	}

	minX, maxX := traj[0][axisX], traj[0][axisX]
	minY, maxY := traj[0][axisY], traj[0][axisY]
	for _, p := range traj {
		minX, maxX = math.Min(minX, p[axisX]), math.Max(maxX, p[axisX])
		minY, maxY = math.Min(minY, p[axisY]), math.Max(maxY, p[axisY])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	header(&sb, width, height, "#0a0a0a")
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, p := range traj {
		x := (p[axisX] - minX) / rangeX * float64(width)
		y := float64(height) - (p[axisY]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
