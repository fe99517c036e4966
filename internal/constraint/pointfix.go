package constraint

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
)

type Pin struct {
	Index  int
	Target cloth.Vec3

	// inverse mass saved while the pin holds the particle immovable
	invMass float64
	held    bool
}

// PointFix holds particles at fixed targets. Pins are applied in the order
// they were added. A pinned particle has zero inverse mass until it is
// released, so neither the solver nor the strain limiter moves it.
type PointFix struct {
	pins   []Pin
	lookup map[int]int
	sys    *cloth.System
}

func NewPointFix() *PointFix {
	return &PointFix{lookup: make(map[int]int)}
}

// Fix pins particle idx at its current position. Pinning an already pinned
// particle moves its target to the current position.
func (f *PointFix) Fix(sys *cloth.System, idx int) error {
	if idx < 0 || idx >= len(sys.Particles) {
		return fmt.Errorf("fix %d: %w", idx, ErrUnknownParticle)
	}
	f.put(idx, sys.Particles[idx].Pos)
	f.hold(sys)
	return nil
}

// FixAt pins particle idx at target. The particle becomes immovable on the
// next satisfy.
func (f *PointFix) FixAt(idx int, target cloth.Vec3) {
	f.put(idx, target)
}

func (f *PointFix) put(idx int, target cloth.Vec3) {
	if k, ok := f.lookup[idx]; ok {
		f.pins[k].Target = target
		return
	}
	f.lookup[idx] = len(f.pins)
	f.pins = append(f.pins, Pin{Index: idx, Target: target})
}

// SetTarget replaces the target of an existing pin.
func (f *PointFix) SetTarget(idx int, target cloth.Vec3) bool {
	k, ok := f.lookup[idx]
	if !ok {
		return false
	}
	f.pins[k].Target = target
	return true
}

// Move offsets the target of an existing pin by delta.
func (f *PointFix) Move(idx int, delta cloth.Vec3) bool {
	k, ok := f.lookup[idx]
	if !ok {
		return false
	}
	f.pins[k].Target = f.pins[k].Target.Add(delta)
	return true
}

// hold zeroes the inverse mass of every pin not yet holding its particle.
func (f *PointFix) hold(sys *cloth.System) {
	f.sys = sys
	for k := range f.pins {
		p := &f.pins[k]
		if p.held || p.Index >= len(sys.Particles) {
			continue
		}
		p.invMass = sys.Particles[p.Index].InvMass
		p.held = true
		sys.Particles[p.Index].InvMass = 0
	}
}

// Release removes the pin and gives the particle back its inverse mass.
func (f *PointFix) Release(idx int) bool {
	k, ok := f.lookup[idx]
	if !ok {
		return false
	}
	if p := f.pins[k]; p.held && f.sys != nil {
		f.sys.Particles[idx].InvMass = p.invMass
	}
	f.pins = append(f.pins[:k], f.pins[k+1:]...)
	delete(f.lookup, idx)
	for j := k; j < len(f.pins); j++ {
		f.lookup[f.pins[j].Index] = j
	}
	return true
}

func (f *PointFix) Pinned(idx int) bool {
	_, ok := f.lookup[idx]
	return ok
}

func (f *PointFix) Target(idx int) (cloth.Vec3, bool) {
	k, ok := f.lookup[idx]
	if !ok {
		return cloth.Vec3{}, false
	}
	return f.pins[k].Target, true
}

func (f *PointFix) Pins() []Pin {
	out := make([]Pin, len(f.pins))
	copy(out, f.pins)
	return out
}

func (f *PointFix) Len() int { return len(f.pins) }

func (f *PointFix) satisfy(sys *cloth.System) {
	f.hold(sys)
	for _, p := range f.pins {
		sys.Particles[p.Index].Pos = p.Target
	}
}
