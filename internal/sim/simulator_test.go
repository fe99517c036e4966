package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/constraint"
	"github.com/san-kum/clothsim/internal/interact"
	"github.com/san-kum/clothsim/internal/render"
	"github.com/san-kum/clothsim/internal/solver"
	"github.com/san-kum/clothsim/internal/topology"
)

// hanging builds a 5x5 cloth pinned at its two top corners.
func hanging(t *testing.T) (*Simulation, *constraint.PointFix) {
	t.Helper()
	sys, err := topology.BuildUniformGrid(1.0, 5, topology.DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fix := constraint.NewPointFix()
	fix.Fix(sys, 0)
	fix.Fix(sys, 4)

	g := constraint.New()
	g.AddDeformation(constraint.Root, constraint.NewDeformation(sys.Group(cloth.Structural), 0.1, 10))
	g.AddPointFix(constraint.Root, fix)

	s := New(sys, solver.NewChebyshev(solver.DefaultRho, solver.DefaultGamma, solver.DefaultDelay), g)
	s.Name = "test"
	return s, fix
}

func TestSimulationFrame(t *testing.T) {
	s, fix := hanging(t)
	start := s.System.Positions()

	for i := 0; i < 30; i++ {
		if err := s.Frame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}

	if s.FrameCount() != 30 {
		t.Errorf("expected 30 frames, got %d", s.FrameCount())
	}
	if math.Abs(s.Time()-30*cloth.DefaultTimeStep) > 1e-12 {
		t.Errorf("unexpected time %f", s.Time())
	}
	for _, p := range fix.Pins() {
		if s.System.Particles[p.Index].Pos != start[p.Index] {
			t.Errorf("pinned particle %d moved", p.Index)
		}
	}
	mid := s.System.Index(2, 2)
	if s.System.Particles[mid].Pos.Z() >= 0 {
		t.Errorf("interior particle should sag, z=%f", s.System.Particles[mid].Pos.Z())
	}
	if got := s.Mesh.Positions[3*mid+2]; got != float32(s.System.Particles[mid].Pos.Z()) {
		t.Errorf("mesh not updated: %f", got)
	}
}

func TestSimulationSubSteps(t *testing.T) {
	s, _ := hanging(t)
	s.SubSteps = 3
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if math.Abs(s.Time()-3*cloth.DefaultTimeStep) > 1e-12 {
		t.Errorf("expected three steps of time, got %f", s.Time())
	}
}

func TestSimulationRenderer(t *testing.T) {
	s, _ := hanging(t)
	rec := &render.Recorder{}
	s.Renderer = rec

	for i := 0; i < 3; i++ {
		if err := s.Frame(); err != nil {
			t.Fatal(err)
		}
	}
	if len(rec.Calls) != 3 {
		t.Fatalf("expected 3 draw calls, got %d", len(rec.Calls))
	}
	if rec.Calls[0].Count != 3*len(topology.Faces(5)) {
		t.Errorf("unexpected index count %d", rec.Calls[0].Count)
	}
}

func TestSimulationRendererErrorIsFatal(t *testing.T) {
	s, _ := hanging(t)
	s.Renderer = &render.Recorder{Fail: render.ErrNoSurface}

	res, err := s.Run(context.Background(), 10, 1)
	if !errors.Is(err, render.ErrNoSurface) {
		t.Fatalf("expected ErrNoSurface, got %v", err)
	}
	var fe FrameError
	if !errors.As(err, &fe) || fe.Frame != 1 {
		t.Errorf("expected failure on frame 1, got %v", err)
	}
	if res.Frames != 0 {
		t.Errorf("no frame should complete, got %d", res.Frames)
	}
}

func TestSimulationDiverged(t *testing.T) {
	s, _ := hanging(t)
	s.System.Particles[12].Pos = cloth.Vec3{math.NaN(), 0, 0}
	if err := s.Frame(); !errors.Is(err, ErrDiverged) {
		t.Errorf("expected ErrDiverged, got %v", err)
	}
}

func TestSimulationRun(t *testing.T) {
	s, _ := hanging(t)
	res, err := s.Run(context.Background(), 10, 5)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Positions) != 3 {
		t.Errorf("expected 3 samples, got %d", len(res.Positions))
	}
	if len(res.Times) != 3 || res.Times[0] != 0 {
		t.Errorf("unexpected times %v", res.Times)
	}
	if res.Frames != 10 {
		t.Errorf("expected 10 frames, got %d", res.Frames)
	}
	if len(res.Trajectory(12)) != 3 {
		t.Error("trajectory should have one entry per sample")
	}
	if len(res.Final()) != 25 {
		t.Error("final sample should hold every particle")
	}
}

func TestSimulationRunInvalid(t *testing.T) {
	s, _ := hanging(t)
	if _, err := s.Run(context.Background(), -1, 1); err == nil {
		t.Error("expected error for negative frames")
	}
	s.Iterations = 0
	if _, err := s.Run(context.Background(), 1, 1); err == nil {
		t.Error("expected error for zero iterations")
	}
}

func TestSimulationRunCancelled(t *testing.T) {
	s, _ := hanging(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx, 100, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Frames != 0 {
		t.Errorf("expected no frames, got %d", res.Frames)
	}
}

type countMetric struct {
	count int
}

func (c *countMetric) Name() string                      { return "count" }
func (c *countMetric) Observe(_ *cloth.System, _ float64) { c.count++ }
func (c *countMetric) Value() float64                    { return float64(c.count) }
func (c *countMetric) Reset()                            { c.count = 0 }

func TestSimulationMetricsAndObservers(t *testing.T) {
	s, _ := hanging(t)
	metric := &countMetric{count: 7}
	s.AddMetric(metric)

	var frames []int
	s.AddObserver(ObserverFunc(func(frame int, _ float64, _ *cloth.System, mesh *render.Mesh) {
		if mesh == nil {
			t.Error("observer got nil mesh")
		}
		frames = append(frames, frame)
	}))

	res, err := s.Run(context.Background(), 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Metrics["count"] != 4 {
		t.Errorf("metric should be reset then observed 4 times, got %f", res.Metrics["count"])
	}
	if len(frames) != 4 || frames[3] != 4 {
		t.Errorf("unexpected observed frames %v", frames)
	}
}

func TestSimulationAttachDrag(t *testing.T) {
	s, fix := hanging(t)
	s.Attach(fix, render.NewCamera(200, 200), interact.Unpin)

	mid := s.System.Index(2, 2)
	x, y, _, ok := s.Camera.Project(s.System.Particles[mid].Pos)
	if !ok {
		t.Fatal("centre not visible")
	}
	if !s.Grabber.GrabPoint(int(x), int(y)) {
		t.Fatal("expected a hit at the centre")
	}
	s.Grabber.MovePoint(cloth.Vec3{0, 0, 0.3})
	target, _ := fix.Target(mid)
	if err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if s.System.Particles[mid].Pos != target {
		t.Errorf("dragged particle should sit on its target, got %v want %v", s.System.Particles[mid].Pos, target)
	}
	s.Grabber.ReleasePoint()
	if fix.Pinned(mid) {
		t.Error("release should drop the drag pin")
	}
}

func TestEnsemble(t *testing.T) {
	e := NewEnsemble(func(i int) (*Simulation, error) {
		s, _ := hanging(t)
		s.SubSteps = i + 1
		return s, nil
	}, 3)
	e.SetLimit(2)

	results, err := e.Run(context.Background(), 5, 5)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Frames != 5 {
			t.Errorf("run %d: expected 5 frames, got %d", i, r.Frames)
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEnsemble(func(i int) (*Simulation, error) {
		if i == 1 {
			return nil, boom
		}
		s, _ := hanging(t)
		return s, nil
	}, 2)
	if _, err := e.Run(context.Background(), 1, 1); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}
