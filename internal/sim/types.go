package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/render"
)

// ErrDiverged reports a frame that left NaN or Inf positions behind.
var ErrDiverged = errors.New("sim: particle state diverged")

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(sys *cloth.System, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every frame. sys and mesh are borrowed for the
// duration of the call.
type Observer interface {
	OnFrame(frame int, t float64, sys *cloth.System, mesh *render.Mesh)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(frame int, t float64, sys *cloth.System, mesh *render.Mesh)

func (f ObserverFunc) OnFrame(frame int, t float64, sys *cloth.System, mesh *render.Mesh) {
	f(frame, t, sys, mesh)
}

type Result struct {
	Name      string
	Positions [][]cloth.Vec3
	Times     []float64
	Frames    int
	Metrics   map[string]float64
}

// Final returns the last sampled positions.
func (r *Result) Final() []cloth.Vec3 {
	if len(r.Positions) == 0 {
		return nil
	}
	return r.Positions[len(r.Positions)-1]
}

// Trajectory returns the sampled path of one particle.
func (r *Result) Trajectory(idx int) []cloth.Vec3 {
	out := make([]cloth.Vec3, 0, len(r.Positions))
	for _, frame := range r.Positions {
		if idx < len(frame) {
			out = append(out, frame[idx])
		}
	}
	return out
}

type FrameError struct {
	Frame int
	Time  float64
	Err   error
}

func (e FrameError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Err)
}

func (e FrameError) Unwrap() error { return e.Err }
