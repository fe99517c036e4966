package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/constraint"
	"github.com/san-kum/clothsim/internal/interact"
	"github.com/san-kum/clothsim/internal/render"
	"github.com/san-kum/clothsim/internal/solver"
	"github.com/san-kum/clothsim/internal/topology"
)

// Simulation is the frame driver. It owns the particle system and hands it
// in turn to the solver and to the constraint graph.
type Simulation struct {
	Name       string
	System     *cloth.System
	Solver     solver.Solver
	Graph      *constraint.Graph
	Mesh       *render.Mesh
	Renderer   render.Renderer
	SubSteps   int
	Iterations int

	// set by Attach
	Fix     *constraint.PointFix
	Camera  *render.Camera
	Pick    *render.PickPass
	Grabber *interact.Grabber

	metrics   []Metric
	observers []Observer
	logger    *log.Logger

	frame int
	time  float64
}

func New(sys *cloth.System, slv solver.Solver, graph *constraint.Graph) *Simulation {
	var faces [][3]int
	if sys.N >= topology.MinGridSize {
		faces = topology.Faces(sys.N)
	}
	mesh := render.NewMesh(len(sys.Particles), faces)
	mesh.Update(sys)
	return &Simulation{
		System:     sys,
		Solver:     slv,
		Graph:      graph,
		Mesh:       mesh,
		SubSteps:   1,
		Iterations: solver.DefaultIterations,
		logger:     log.New(io.Discard),
	}
}

// Attach wires pointer interaction: a pick pass over the mesh faces and a
// grabber that drags through fix.
func (s *Simulation) Attach(fix *constraint.PointFix, cam *render.Camera, policy interact.ReleasePolicy) {
	s.Fix = fix
	s.Camera = cam
	s.Pick = render.NewPickPass(cam, s.Mesh.Faces)
	s.Grabber = interact.NewGrabber(s.System, fix, s.Pick, cam, policy)
}

func (s *Simulation) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simulation) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) FrameCount() int { return s.frame }
func (s *Simulation) Time() float64   { return s.time }

// FrameDuration is the simulated time covered by one frame.
func (s *Simulation) FrameDuration() float64 {
	return s.System.Params.TimeStep * float64(s.SubSteps)
}

// Frame advances one frame: SubSteps solver steps, one pass over the
// constraint graph, the mesh update and an optional draw. Renderer errors
// come back wrapped in a FrameError and are fatal.
func (s *Simulation) Frame() error {
	for i := 0; i < s.SubSteps; i++ {
		s.Solver.Solve(s.System, s.Iterations)
	}
	s.Graph.Satisfy(s.System)
	s.Mesh.Update(s.System)

	s.frame++
	s.time += s.FrameDuration()

	if !s.System.IsValid() {
		return FrameError{Frame: s.frame, Time: s.time, Err: ErrDiverged}
	}

	for _, m := range s.metrics {
		m.Observe(s.System, s.time)
	}
	for _, obs := range s.observers {
		obs.OnFrame(s.frame, s.time, s.System, s.Mesh)
	}

	if s.Renderer != nil {
		call := render.DrawCall{Shader: "cloth", Input: "mesh", Count: 3 * len(s.Mesh.Faces)}
		if err := s.Renderer.Draw(call, s.Mesh); err != nil {
			return FrameError{Frame: s.frame, Time: s.time, Err: err}
		}
	}
	return nil
}

// Run advances frames frames, sampling positions every sampleEvery frames
// (the initial state is always sampled).
func (s *Simulation) Run(ctx context.Context, frames, sampleEvery int) (*Result, error) {
	if frames < 0 {
		return nil, fmt.Errorf("frames must be non-negative, got %d", frames)
	}
	if sampleEvery <= 0 {
		sampleEvery = 1
	}
	if s.SubSteps <= 0 || s.Iterations <= 0 {
		return nil, fmt.Errorf("sub-steps and iterations must be positive, got %d and %d", s.SubSteps, s.Iterations)
	}

	result := &Result{
		Name:      s.Name,
		Positions: make([][]cloth.Vec3, 0, frames/sampleEvery+1),
		Times:     make([]float64, 0, frames/sampleEvery+1),
		Metrics:   make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	result.Positions = append(result.Positions, s.System.Positions())
	result.Times = append(result.Times, s.time)

	s.logger.Debug("run", "name", s.Name, "frames", frames, "solver", s.Solver.Name(), "particles", len(s.System.Particles))

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := s.Frame(); err != nil {
			s.logger.Error("frame failed", "err", err)
			s.collect(result)
			return result, err
		}
		result.Frames++

		if result.Frames%sampleEvery == 0 {
			result.Positions = append(result.Positions, s.System.Positions())
			result.Times = append(result.Times, s.time)
		}
	}

	s.collect(result)
	s.logger.Debug("run done", "name", s.Name, "frames", result.Frames, "t", s.time)
	return result, nil
}

func (s *Simulation) collect(r *Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
