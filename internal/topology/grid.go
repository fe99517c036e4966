// Package topology builds particle systems with a regular grid topology.
package topology

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
)

const (
	MinGridSize      = 3
	DefaultGridSize  = 33
	DefaultWidth     = 1.0
	DefaultTotalMass = 0.25
	DefaultSlack     = 1.02
	DefaultStiffness = 100.0
)

// Options controls the grid builder. Zero stiffness for a kind falls back to
// Stiffness.
type Options struct {
	TotalMass       float64
	Stiffness       float64
	ShearStiffness  float64
	BendStiffness   float64
	Slack           float64
	Bend            bool
	ParticleDamping float64
	Params          cloth.Params
}

func DefaultOptions() Options {
	return Options{
		TotalMass: DefaultTotalMass,
		Stiffness: DefaultStiffness,
		Slack:     DefaultSlack,
		Params:    cloth.DefaultParams(),
	}
}

func (o Options) stiffness(kind cloth.SpringKind) float64 {
	switch kind {
	case cloth.Shear:
		if o.ShearStiffness > 0 {
			return o.ShearStiffness
		}
	case cloth.Bend:
		if o.BendStiffness > 0 {
			return o.BendStiffness
		}
	}
	return o.Stiffness
}

// BuildUniformGrid lays n*n particles on a width x width grid in the z=0 plane,
// centred on the origin with row 0 at +y, and links them with structural and
// shear springs (plus bend springs when enabled). Each particle weighs
// TotalMass/n^2 so the cloth mass does not depend on the resolution.
func BuildUniformGrid(width float64, n int, opts Options) (*cloth.System, error) {
	if n < MinGridSize || n%2 == 0 {
		return nil, &cloth.BuildError{Op: "build grid", Detail: fmt.Sprintf("n=%d", n), Err: cloth.ErrGridSize}
	}
	if !(width > 0) {
		return nil, &cloth.BuildError{Op: "build grid", Detail: fmt.Sprintf("width=%g", width), Err: cloth.ErrParameterBounds}
	}
	if !(opts.TotalMass > 0) || !(opts.Stiffness > 0) {
		return nil, &cloth.BuildError{Op: "build grid", Detail: fmt.Sprintf("mass=%g stiffness=%g", opts.TotalMass, opts.Stiffness), Err: cloth.ErrParameterBounds}
	}
	if !(opts.Slack >= 1) {
		return nil, &cloth.BuildError{Op: "build grid", Detail: fmt.Sprintf("slack=%g", opts.Slack), Err: cloth.ErrParameterBounds}
	}
	if opts.ParticleDamping < 0 || opts.ParticleDamping >= 1 {
		return nil, &cloth.BuildError{Op: "build grid", Detail: fmt.Sprintf("particle damping=%g", opts.ParticleDamping), Err: cloth.ErrParameterBounds}
	}

	spacing := width / float64(n-1)
	mass := opts.TotalMass / float64(n*n)
	gravity := cloth.Vec3{0, 0, -opts.Params.Gravity * mass}

	sys := &cloth.System{
		Particles: make([]cloth.Particle, n*n),
		Springs:   make([]cloth.Spring, 0, springCount(n, opts.Bend)),
		Params:    opts.Params,
		N:         n,
	}

	half := width / 2
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			pos := cloth.Vec3{-half + float64(col)*spacing, half - float64(row)*spacing, 0}
			sys.Particles[row*n+col] = cloth.Particle{
				Pos:     pos,
				Prev:    pos,
				InvMass: 1 / mass,
				Force:   gravity,
				Damping: opts.ParticleDamping,
			}
		}
	}

	link := func(a, b int, kind cloth.SpringKind) {
		if a > b {
			a, b = b, a
		}
		rest := sys.Particles[b].Pos.Sub(sys.Particles[a].Pos).Len() * opts.Slack
		sys.Springs = append(sys.Springs, cloth.Spring{A: a, B: b, Rest: rest, Stiffness: opts.stiffness(kind), Kind: kind})
	}

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			i := row*n + col
			if col+1 < n {
				link(i, i+1, cloth.Structural)
			}
			if row+1 < n {
				link(i, i+n, cloth.Structural)
			}
		}
	}
	for row := 0; row+1 < n; row++ {
		for col := 0; col+1 < n; col++ {
			i := row*n + col
			link(i, i+n+1, cloth.Shear)
			link(i+1, i+n, cloth.Shear)
		}
	}
	if opts.Bend {
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				i := row*n + col
				if col+2 < n {
					link(i, i+2, cloth.Bend)
				}
				if row+2 < n {
					link(i, i+2*n, cloth.Bend)
				}
			}
		}
	}

	if err := sys.Validate(); err != nil {
		return nil, err
	}
	return sys, nil
}

// springCount returns the number of springs BuildUniformGrid creates.
func springCount(n int, bend bool) int {
	count := 2*n*(n-1) + 2*(n-1)*(n-1)
	if bend {
		count += 2 * n * (n - 2)
	}
	return count
}

// Center returns the index of the middle particle of an n x n grid.
func Center(n int) int {
	return (n/2)*n + n/2
}

// Corners returns the indices of the four corners in the order top-left,
// top-right, bottom-left, bottom-right.
func Corners(n int) [4]int {
	return [4]int{0, n - 1, n * (n - 1), n*n - 1}
}

// Spacing returns the distance between grid-adjacent particles.
func Spacing(width float64, n int) float64 {
	return width / float64(n-1)
}

// Faces returns the triangles of the grid, two per cell, as particle index
// triples with counter-clockwise winding seen from +z.
func Faces(n int) [][3]int {
	faces := make([][3]int, 0, 2*(n-1)*(n-1))
	for row := 0; row+1 < n; row++ {
		for col := 0; col+1 < n; col++ {
			i := row*n + col
			faces = append(faces, [3]int{i, i + n, i + n + 1}, [3]int{i, i + n + 1, i + 1})
		}
	}
	return faces
}
