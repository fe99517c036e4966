package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Camera struct {
	Eye, Target, Up mgl64.Vec3
	FovY            float64 // degrees
	Near, Far       float64
	Width, Height   int
}

// NewCamera looks at the cloth from the front and slightly above.
func NewCamera(width, height int) *Camera {
	return &Camera{
		Eye:    mgl64.Vec3{0, -2.6, 0.8},
		Target: mgl64.Vec3{0, 0, -0.4},
		Up:     mgl64.Vec3{0, 0, 1},
		FovY:   45,
		Near:   0.1,
		Far:    100,
		Width:  width,
		Height: height,
	}
}

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye, c.Target, c.Up)
}

func (c *Camera) Projection() mgl64.Mat4 {
	aspect := 1.0
	if c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// Project maps a world point to screen coordinates with the origin at the
// top-left corner and depth in [0,1]. ok is false for points outside the
// view volume's depth range or behind the eye.
func (c *Camera) Project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	clip := c.Projection().Mul4(c.View()).Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = float64(c.Width) * (ndc.X() + 1) / 2
	y = float64(c.Height) * (1 - ndc.Y()) / 2
	depth = (ndc.Z() + 1) / 2
	return x, y, depth, ndc.Z() >= -1 && ndc.Z() <= 1
}

// Unproject maps a screen point at the given depth back to world space.
func (c *Camera) Unproject(x, y, depth float64) (mgl64.Vec3, error) {
	win := mgl64.Vec3{x, float64(c.Height) - y, depth}
	return mgl64.UnProject(win, c.View(), c.Projection(), 0, 0, c.Width, c.Height)
}

// Orbit rotates the eye around the target by yaw (about the up axis) and
// pitch (about the camera's right axis), both in radians.
func (c *Camera) Orbit(yaw, pitch float64) {
	off := c.Eye.Sub(c.Target)
	off = mgl64.HomogRotate3D(yaw, c.Up.Normalize()).Mul4x1(off.Vec4(0)).Vec3()

	right := off.Cross(c.Up).Normalize()
	rotated := mgl64.HomogRotate3D(pitch, right).Mul4x1(off.Vec4(0)).Vec3()
	// keep away from the poles so LookAt stays well defined
	if math.Abs(rotated.Normalize().Dot(c.Up.Normalize())) < 0.98 {
		off = rotated
	}
	c.Eye = c.Target.Add(off)
}

// Zoom scales the eye distance by factor, clamped to a sane range.
func (c *Camera) Zoom(factor float64) {
	off := c.Eye.Sub(c.Target)
	l := off.Len() * factor
	l = math.Max(0.5, math.Min(50, l))
	c.Eye = c.Target.Add(off.Normalize().Mul(l))
}

func (c *Camera) Resize(width, height int) {
	c.Width, c.Height = width, height
}

// Spherical returns the eye's offset from the target as yaw (about +z,
// zero looking along +y), pitch above the xy plane and distance.
func (c *Camera) Spherical() (yaw, pitch, dist float64) {
	off := c.Eye.Sub(c.Target)
	dist = off.Len()
	if dist == 0 {
		return 0, 0, 0
	}
	pitch = math.Asin(off.Z() / dist)
	yaw = math.Atan2(off.X(), -off.Y())
	return yaw, pitch, dist
}

// SetSpherical places the eye around the target; pitch is clamped short
// of the poles.
func (c *Camera) SetSpherical(yaw, pitch, dist float64) {
	const limit = 1.45
	pitch = math.Max(-limit, math.Min(limit, pitch))
	dist = math.Max(0.5, math.Min(50, dist))
	cp := math.Cos(pitch)
	off := mgl64.Vec3{dist * cp * math.Sin(yaw), -dist * cp * math.Cos(yaw), dist * math.Sin(pitch)}
	c.Eye = c.Target.Add(off)
}
