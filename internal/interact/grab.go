// Package interact maps pointer input onto the cloth: a pointer press picks
// a particle, drags move its pin target and a release lets it go.
package interact

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/constraint"
	"github.com/san-kum/clothsim/internal/render"
)

// None is the grabbed index when nothing is held.
const None = -1

// Picker resolves a pointer position to a particle for the given positions.
type Picker interface {
	Pick(positions []mgl64.Vec3, x, y int) (int, bool)
}

// ReleasePolicy decides what happens to the drag pin on release.
type ReleasePolicy int

const (
	// Unpin removes the pin the grab created.
	Unpin ReleasePolicy = iota
	// KeepPinned leaves the particle pinned where it was released.
	KeepPinned
)

func (p ReleasePolicy) String() string {
	if p == KeepPinned {
		return "keep"
	}
	return "unpin"
}

func ParseReleasePolicy(s string) (ReleasePolicy, error) {
	switch s {
	case "", "unpin":
		return Unpin, nil
	case "keep":
		return KeepPinned, nil
	default:
		return Unpin, fmt.Errorf("unknown release policy: %s", s)
	}
}

type Grabber struct {
	sys    *cloth.System
	fix    *constraint.PointFix
	picker Picker
	cam    *render.Camera
	policy ReleasePolicy

	grabbed int
	ownsPin bool
}

func NewGrabber(sys *cloth.System, fix *constraint.PointFix, picker Picker, cam *render.Camera, policy ReleasePolicy) *Grabber {
	return &Grabber{
		sys:     sys,
		fix:     fix,
		picker:  picker,
		cam:     cam,
		policy:  policy,
		grabbed: None,
	}
}

func (g *Grabber) Policy() ReleasePolicy { return g.policy }

func (g *Grabber) SetPolicy(p ReleasePolicy) { g.policy = p }

func (g *Grabber) Grabbed() (int, bool) {
	return g.grabbed, g.grabbed != None
}

// GrabPoint picks the particle under (x, y) with a fresh pick pass and pins
// it at its current position. A miss leaves nothing grabbed.
func (g *Grabber) GrabPoint(x, y int) bool {
	if g.grabbed != None {
		g.ReleasePoint()
	}
	idx, ok := g.picker.Pick(g.sys.Positions(), x, y)
	if !ok {
		return false
	}
	g.grabbed = idx
	g.ownsPin = !g.fix.Pinned(idx)
	if g.ownsPin {
		// the picker only returns indices of the system it was given
		_ = g.fix.Fix(g.sys, idx)
	}
	return true
}

// MovePoint offsets the grabbed particle's target by delta. Without a grab
// it does nothing.
func (g *Grabber) MovePoint(delta mgl64.Vec3) bool {
	if g.grabbed == None {
		return false
	}
	return g.fix.Move(g.grabbed, delta)
}

// MoveScreen converts a pointer delta in pixels into a world delta in the
// plane facing the camera at the grabbed particle's depth.
func (g *Grabber) MoveScreen(dx, dy float64) bool {
	if g.grabbed == None || g.cam == nil {
		return false
	}
	target, ok := g.fix.Target(g.grabbed)
	if !ok {
		return false
	}
	sx, sy, depth, _ := g.cam.Project(target)
	moved, err := g.cam.Unproject(sx+dx, sy+dy, depth)
	if err != nil {
		return false
	}
	return g.MovePoint(moved.Sub(target))
}

// ReleasePoint ends the drag. Under Unpin the pin created by the grab is
// removed; pins that existed before the grab always stay.
func (g *Grabber) ReleasePoint() {
	if g.grabbed == None {
		return
	}
	if g.policy == Unpin && g.ownsPin {
		g.fix.Release(g.grabbed)
	}
	g.grabbed = None
	g.ownsPin = false
}
