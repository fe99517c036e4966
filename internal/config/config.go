package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/constraint"
	"github.com/san-kum/clothsim/internal/solver"
	"github.com/san-kum/clothsim/internal/topology"
)

const (
	DefaultDemo     = "hang"
	DefaultFrames   = 600
	DefaultSubSteps = 2
	DefaultSolver   = "chebyshev"
	DefaultRadius   = 0.64
	DefaultRelease  = "unpin"

	EnvData     = "CLOTHSIM_DATA"
	EnvLogLevel = "CLOTHSIM_LOG_LEVEL"
)

type Config struct {
	Demo        string           `yaml:"demo"`
	Frames      int              `yaml:"frames"`
	Release     string           `yaml:"release"`
	Cloth       ClothConfig      `yaml:"cloth"`
	Solver      SolverConfig     `yaml:"solver"`
	Constraints ConstraintConfig `yaml:"constraints"`
	Sphere      SphereConfig     `yaml:"sphere"`
}

type ClothConfig struct {
	N         int     `yaml:"n"`
	Width     float64 `yaml:"width"`
	TimeStep  float64 `yaml:"h"`
	Stiffness float64 `yaml:"stiffness"`
	Mass      float64 `yaml:"mass"`
	Damping   float64 `yaml:"damping"`
	Gravity   float64 `yaml:"gravity"`
	Slack     float64 `yaml:"slack"`
	Bend      bool    `yaml:"bend"`
}

type SolverConfig struct {
	Name       string  `yaml:"name"`
	Iterations int     `yaml:"iterations"`
	SubSteps   int     `yaml:"sub_steps"`
	Rho        float64 `yaml:"rho"`
	Gamma      float64 `yaml:"gamma"`
	Delay      int     `yaml:"delay"`
}

type ConstraintConfig struct {
	CriticalStrain float64 `yaml:"critical_strain"`
	Iterations     int     `yaml:"iterations"`
}

type SphereConfig struct {
	Center [3]float64 `yaml:"center"`
	Radius float64    `yaml:"radius"`
}

func DefaultConfig() *Config {
	return &Config{
		Demo:    DefaultDemo,
		Frames:  DefaultFrames,
		Release: DefaultRelease,
		Cloth: ClothConfig{
			N:         topology.DefaultGridSize,
			Width:     topology.DefaultWidth,
			TimeStep:  cloth.DefaultTimeStep,
			Stiffness: topology.DefaultStiffness,
			Mass:      topology.DefaultTotalMass,
			Damping:   cloth.DefaultDamping,
			Gravity:   cloth.DefaultGravity,
			Slack:     topology.DefaultSlack,
		},
		Solver: SolverConfig{
			Name:       DefaultSolver,
			Iterations: solver.DefaultIterations,
			SubSteps:   DefaultSubSteps,
			Rho:        solver.DefaultRho,
			Gamma:      solver.DefaultGamma,
			Delay:      solver.DefaultDelay,
		},
		Constraints: ConstraintConfig{
			CriticalStrain: constraint.DefaultCriticalStrain,
			Iterations:     constraint.DefaultIterations,
		},
		Sphere: SphereConfig{
			Center: [3]float64{0, 0, -1},
			Radius: DefaultRadius,
		},
	}
}

// Load reads a YAML file, or a gcfg file when the extension is .gcfg or
// .ini, on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gcfg", ".ini":
		if err := loadGcfg(path, cfg); err != nil {
			return nil, err
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every numeric parameter against its bounds.
func (c *Config) Validate() error {
	check := func(ok bool, name string, v any) error {
		if ok {
			return nil
		}
		return fmt.Errorf("config %s=%v: %w", name, v, cloth.ErrParameterBounds)
	}
	cl, s, k := c.Cloth, c.Solver, c.Constraints
	if cl.N < topology.MinGridSize || cl.N%2 == 0 {
		return fmt.Errorf("config n=%d: %w", cl.N, cloth.ErrGridSize)
	}
	for _, err := range []error{
		check(cl.Width > 0, "width", cl.Width),
		check(cl.TimeStep > 0, "h", cl.TimeStep),
		check(cl.Stiffness > 0, "stiffness", cl.Stiffness),
		check(cl.Mass > 0, "mass", cl.Mass),
		check(cl.Damping > 0 && cl.Damping <= 1, "damping", cl.Damping),
		check(cl.Gravity >= 0, "gravity", cl.Gravity),
		check(cl.Slack >= 1, "slack", cl.Slack),
		check(s.Iterations > 0, "solver.iterations", s.Iterations),
		check(s.SubSteps > 0, "solver.sub_steps", s.SubSteps),
		check(s.Rho > 0 && s.Rho < 1, "solver.rho", s.Rho),
		check(s.Gamma > 0 && s.Gamma <= 1, "solver.gamma", s.Gamma),
		check(s.Delay >= 1, "solver.delay", s.Delay),
		check(k.CriticalStrain > 0, "constraints.critical_strain", k.CriticalStrain),
		check(k.Iterations > 0, "constraints.iterations", k.Iterations),
		check(c.Sphere.Radius > 0, "sphere.radius", c.Sphere.Radius),
		check(c.Frames >= 0, "frames", c.Frames),
		check(c.Release == "unpin" || c.Release == "keep", "release", c.Release),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// GridOptions translates the cloth section into builder options.
func (c *Config) GridOptions() topology.Options {
	opts := topology.DefaultOptions()
	opts.TotalMass = c.Cloth.Mass
	opts.Stiffness = c.Cloth.Stiffness
	opts.Slack = c.Cloth.Slack
	opts.Bend = c.Cloth.Bend
	opts.Params = cloth.Params{
		TimeStep: c.Cloth.TimeStep,
		Damping:  c.Cloth.Damping,
		Gravity:  c.Cloth.Gravity,
	}
	return opts
}

func (c *Config) SolverConfig() solver.Config {
	return solver.Config{Rho: c.Solver.Rho, Gamma: c.Solver.Gamma, Delay: c.Solver.Delay}
}

func (c *Config) SphereCenter() cloth.Vec3 {
	return cloth.Vec3{c.Sphere.Center[0], c.Sphere.Center[1], c.Sphere.Center[2]}
}

// LoadEnv reads a .env file if present. A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Env returns the value of key, or def when it is unset.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
