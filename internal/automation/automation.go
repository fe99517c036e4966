// Package automation replays scripted pointer interaction against a demo.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/scene"
	"github.com/san-kum/clothsim/internal/sim"
)

// Scenario defines a scripted interaction sequence:
//
//	name: lift
//	demo: hang
//	config:
//	  cloth: {n: 9}
//	steps:
//	  - {action: advance, frames: 60}
//	  - {action: grab, particle: 40}
//	  - {action: move, delta: [0, 0, 0.2]}
//	  - {action: advance, frames: 30}
//	  - {action: release}
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Demo        string    `yaml:"demo"`
	Preset      string    `yaml:"preset"`
	Config      yaml.Node `yaml:"config"`
	Steps       []Step    `yaml:"steps"`
}

// Step is one scripted action. grab takes either a particle index, which is
// projected to the screen first, or screen coordinates x, y.
type Step struct {
	Action   string     `yaml:"action"`
	Frames   int        `yaml:"frames"`
	Particle *int       `yaml:"particle"`
	X        int        `yaml:"x"`
	Y        int        `yaml:"y"`
	Delta    [3]float64 `yaml:"delta"`
	Screen   [2]float64 `yaml:"screen"`
}

// StepRecord is the outcome of one step.
type StepRecord struct {
	Index   int
	Action  string
	Frame   int
	Hit     bool
	Grabbed int
}

type Report struct {
	Scenario  string
	Steps     []StepRecord
	Frames    int
	Positions [][]cloth.Vec3
	Times     []float64
	Metrics   map[string]float64
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	return &sc, nil
}

// BuildConfig resolves the scenario's preset and inline overrides.
func (sc *Scenario) BuildConfig() (*config.Config, error) {
	demo := sc.Demo
	if demo == "" {
		demo = config.DefaultDemo
	}
	cfg := config.DefaultConfig()
	if sc.Preset != "" {
		cfg = config.GetPreset(demo, sc.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", demo, sc.Preset)
		}
	}
	cfg.Demo = demo
	if sc.Config.Kind != 0 {
		if err := sc.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("scenario config: %w", err)
		}
	}
	return cfg, nil
}

type Runner struct {
	registry *scene.Registry
	logger   *log.Logger
}

func NewRunner(registry *scene.Registry, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{registry: registry, logger: logger}
}

// Run builds the scenario's demo and executes its steps in order.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	cfg, err := sc.BuildConfig()
	if err != nil {
		return nil, err
	}
	s, err := r.registry.Build(cfg)
	if err != nil {
		return nil, err
	}
	s.SetLogger(r.logger)
	return r.Execute(ctx, sc, s)
}

// Execute runs the steps against an existing simulation.
func (r *Runner) Execute(ctx context.Context, sc *Scenario, s *sim.Simulation) (*Report, error) {
	if s.Grabber == nil {
		return nil, fmt.Errorf("scenario %s: simulation has no interaction attached", sc.Name)
	}
	rep := &Report{
		Scenario:  sc.Name,
		Positions: [][]cloth.Vec3{s.System.Positions()},
		Times:     []float64{s.Time()},
		Metrics:   map[string]float64{},
	}

	for i, step := range sc.Steps {
		rec := StepRecord{Index: i + 1, Action: step.Action}
		r.logger.Info("step", "n", i+1, "of", len(sc.Steps), "action", step.Action)

		switch step.Action {
		case "advance":
			if step.Frames <= 0 {
				return rep, fmt.Errorf("step %d: advance needs frames > 0", i+1)
			}
			res, err := s.Run(ctx, step.Frames, step.Frames)
			if res == nil {
				return rep, fmt.Errorf("step %d: %w", i+1, err)
			}
			rep.Frames += res.Frames
			if len(res.Positions) > 1 {
				rep.Positions = append(rep.Positions, res.Positions[1:]...)
				rep.Times = append(rep.Times, res.Times[1:]...)
			}
			for k, v := range res.Metrics {
				rep.Metrics[k] = v
			}
			if err != nil {
				return rep, fmt.Errorf("step %d: %w", i+1, err)
			}
		case "grab":
			x, y := step.X, step.Y
			if step.Particle != nil {
				idx := *step.Particle
				if idx < 0 || idx >= len(s.System.Particles) {
					return rep, fmt.Errorf("step %d: particle %d out of range", i+1, idx)
				}
				sx, sy, _, ok := s.Camera.Project(s.System.Particles[idx].Pos)
				if !ok {
					return rep, fmt.Errorf("step %d: particle %d is not visible", i+1, idx)
				}
				x, y = int(sx), int(sy)
			}
			rec.Hit = s.Grabber.GrabPoint(x, y)
		case "move":
			s.Grabber.MovePoint(cloth.Vec3{step.Delta[0], step.Delta[1], step.Delta[2]})
		case "drag":
			s.Grabber.MoveScreen(step.Screen[0], step.Screen[1])
		case "release":
			s.Grabber.ReleasePoint()
		default:
			return rep, fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}

		rec.Frame = s.FrameCount()
		rec.Grabbed, _ = s.Grabber.Grabbed()
		rep.Steps = append(rep.Steps, rec)
	}
	return rep, nil
}
