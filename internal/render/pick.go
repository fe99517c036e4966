package render

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// EncodeID packs id+1 into the RGB channels; black means "nothing".
func EncodeID(id int) color.RGBA {
	v := uint32(id + 1)
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func DecodeID(c color.RGBA) (int, bool) {
	v := int(c.R)<<16 | int(c.G)<<8 | int(c.B)
	if v == 0 {
		return 0, false
	}
	return v - 1, true
}

// PickPass is an off-screen id buffer. Render fills it with one colour per
// face; Pick reads back the pixel under the pointer.
type PickPass struct {
	cam   *Camera
	faces [][3]int
	color *image.RGBA
	depth []float64
}

func NewPickPass(cam *Camera, faces [][3]int) *PickPass {
	return &PickPass{cam: cam, faces: faces}
}

func (p *PickPass) Faces() [][3]int { return p.faces }

func (p *PickPass) Image() *image.RGBA { return p.color }

func (p *PickPass) clear() {
	w, h := p.cam.Width, p.cam.Height
	if p.color == nil || p.color.Rect.Dx() != w || p.color.Rect.Dy() != h {
		p.color = image.NewRGBA(image.Rect(0, 0, w, h))
		p.depth = make([]float64, w*h)
	}
	for i := range p.color.Pix {
		p.color.Pix[i] = 0
	}
	for i := range p.depth {
		p.depth[i] = math.Inf(1)
	}
}

type screenVertex struct {
	x, y, z float64
	ok      bool
}

// Render rasterises every face with its id and a depth test.
func (p *PickPass) Render(positions []mgl64.Vec3) {
	p.clear()
	proj := make([]screenVertex, len(positions))
	for i, pos := range positions {
		x, y, z, ok := p.cam.Project(pos)
		proj[i] = screenVertex{x, y, z, ok}
	}
	for id, f := range p.faces {
		a, b, c := proj[f[0]], proj[f[1]], proj[f[2]]
		if !a.ok || !b.ok || !c.ok {
			continue
		}
		p.fill(a, b, c, EncodeID(id))
	}
}

func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func (p *PickPass) fill(a, b, c screenVertex, col color.RGBA) {
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if math.Abs(area) < 1e-12 {
		return
	}
	w, h := p.cam.Width, p.cam.Height
	minX := int(math.Max(0, math.Floor(math.Min(a.x, math.Min(b.x, c.x)))))
	maxX := int(math.Min(float64(w-1), math.Ceil(math.Max(a.x, math.Max(b.x, c.x)))))
	minY := int(math.Max(0, math.Floor(math.Min(a.y, math.Min(b.y, c.y)))))
	maxY := int(math.Min(float64(h-1), math.Ceil(math.Max(a.y, math.Max(b.y, c.y)))))

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			cx, cy := float64(px)+0.5, float64(py)+0.5
			w0 := edge(b.x, b.y, c.x, c.y, cx, cy) / area
			w1 := edge(c.x, c.y, a.x, a.y, cx, cy) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.z + w1*b.z + w2*c.z
			k := py*w + px
			if z >= p.depth[k] {
				continue
			}
			p.depth[k] = z
			p.color.SetRGBA(px, py, col)
		}
	}
}

// ReadFace returns the face id stored at pixel (x, y).
func (p *PickPass) ReadFace(x, y int) (int, bool) {
	if p.color == nil || !(image.Point{x, y}).In(p.color.Rect) {
		return 0, false
	}
	return DecodeID(p.color.RGBAAt(x, y))
}

// Pick renders the pass for the given positions and resolves the pixel at
// (x, y) to the vertex of the hit face closest to the pointer.
func (p *PickPass) Pick(positions []mgl64.Vec3, x, y int) (int, bool) {
	p.Render(positions)
	face, ok := p.ReadFace(x, y)
	if !ok || face >= len(p.faces) {
		return 0, false
	}
	best, bestDist := -1, math.Inf(1)
	for _, v := range p.faces[face] {
		sx, sy, _, _ := p.cam.Project(positions[v])
		d := math.Hypot(sx-float64(x), sy-float64(y))
		if d < bestDist {
			best, bestDist = v, d
		}
	}
	return best, best >= 0
}
