package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Mesh holds the vertex buffers handed to the graphics layer: flat xyz
// positions and per-vertex normals, one triple per particle.
type Mesh struct {
	Faces     [][3]int
	Positions []float32
	Normals   []float32

	acc []mgl64.Vec3
}

func NewMesh(vertices int, faces [][3]int) *Mesh {
	return &Mesh{
		Faces:     faces,
		Positions: make([]float32, vertices*3),
		Normals:   make([]float32, vertices*3),
		acc:       make([]mgl64.Vec3, vertices),
	}
}

func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

// Update copies the particle positions into the vertex buffer and
// recomputes area-weighted vertex normals.
func (m *Mesh) Update(sys *cloth.System) {
	for i := range sys.Particles {
		p := sys.Particles[i].Pos
		m.Positions[3*i] = float32(p[0])
		m.Positions[3*i+1] = float32(p[1])
		m.Positions[3*i+2] = float32(p[2])
		m.acc[i] = mgl64.Vec3{}
	}
	for _, f := range m.Faces {
		a, b, c := sys.Particles[f[0]].Pos, sys.Particles[f[1]].Pos, sys.Particles[f[2]].Pos
		n := b.Sub(a).Cross(c.Sub(a))
		m.acc[f[0]] = m.acc[f[0]].Add(n)
		m.acc[f[1]] = m.acc[f[1]].Add(n)
		m.acc[f[2]] = m.acc[f[2]].Add(n)
	}
	for i, n := range m.acc {
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		m.Normals[3*i] = float32(n[0])
		m.Normals[3*i+1] = float32(n[1])
		m.Normals[3*i+2] = float32(n[2])
	}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) mgl64.Vec3 {
	return mgl64.Vec3{float64(m.Normals[3*i]), float64(m.Normals[3*i+1]), float64(m.Normals[3*i+2])}
}
