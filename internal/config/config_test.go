package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Demo != "hang" {
		t.Errorf("expected demo hang, got %s", cfg.Demo)
	}
	if cfg.Cloth.N != 33 {
		t.Errorf("expected n 33, got %d", cfg.Cloth.N)
	}
	if cfg.Cloth.TimeStep <= 0 {
		t.Error("h should be positive")
	}
	// one displayed frame at 60 Hz
	if frame := cfg.Cloth.TimeStep * float64(cfg.Solver.SubSteps); math.Abs(frame-1.0/60) > 1e-12 {
		t.Errorf("expected a 1/60 s frame, got %g", frame)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("hang", "coarse")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Cloth.N != 11 {
		t.Errorf("expected n 11, got %d", cfg.Cloth.N)
	}
	cfg.Cloth.N = 99
	if GetPreset("hang", "coarse").Cloth.N != 11 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("hang", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "default"); cfg != nil {
		t.Error("expected nil for nonexistent demo")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("drop")
	if len(presets) == 0 {
		t.Error("expected presets for drop")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent demo")
	}
}

func TestPresetsValidate(t *testing.T) {
	for demo, set := range Presets {
		for name, cfg := range set {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", demo, name, err)
			}
			if cfg.Demo != demo {
				t.Errorf("%s/%s: demo %q", demo, name, cfg.Demo)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
		want error
	}{
		{"even n", func(c *Config) { c.Cloth.N = 10 }, cloth.ErrGridSize},
		{"tiny n", func(c *Config) { c.Cloth.N = 1 }, cloth.ErrGridSize},
		{"zero h", func(c *Config) { c.Cloth.TimeStep = 0 }, cloth.ErrParameterBounds},
		{"negative mass", func(c *Config) { c.Cloth.Mass = -1 }, cloth.ErrParameterBounds},
		{"damping above one", func(c *Config) { c.Cloth.Damping = 1.5 }, cloth.ErrParameterBounds},
		{"rho one", func(c *Config) { c.Solver.Rho = 1 }, cloth.ErrParameterBounds},
		{"no sweeps", func(c *Config) { c.Solver.Iterations = 0 }, cloth.ErrParameterBounds},
		{"zero critical strain", func(c *Config) { c.Constraints.CriticalStrain = 0 }, cloth.ErrParameterBounds},
		{"bad release", func(c *Config) { c.Release = "sticky" }, cloth.ErrParameterBounds},
		{"ok", func(c *Config) { c.Cloth.N = 5 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Demo = "drop"
	cfg.Cloth.N = 21
	cfg.Sphere.Radius = 0.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Demo != "drop" || got.Cloth.N != 21 || got.Sphere.Radius != 0.5 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadPartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	if err := os.WriteFile(path, []byte("cloth:\n  n: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Cloth.N != 7 {
		t.Errorf("expected n 7, got %d", got.Cloth.N)
	}
	if got.Cloth.Stiffness != DefaultConfig().Cloth.Stiffness {
		t.Error("unset fields should keep defaults")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	os.WriteFile(path, []byte("cloth:\n  n: 8\n"), 0644)
	if _, err := Load(path); !errors.Is(err, cloth.ErrGridSize) {
		t.Errorf("expected grid size error, got %v", err)
	}
}

func TestLoadGcfg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.gcfg")
	body := "[sim]\ndemo = drop\n\n[cloth]\nn = 15\ngravity = 0\n\n[sphere]\ncenterz = -2\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Demo != "drop" || got.Cloth.N != 15 {
		t.Errorf("unexpected %+v", got)
	}
	if got.Cloth.Gravity != 0 {
		t.Errorf("expected gravity 0, got %f", got.Cloth.Gravity)
	}
	if got.Sphere.Center != [3]float64{0, 0, -2} {
		t.Errorf("expected center z -2, got %v", got.Sphere.Center)
	}
	if got.Solver.Name != DefaultSolver {
		t.Errorf("unset solver should stay %s", DefaultSolver)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	os.WriteFile(path, []byte(EnvLogLevel+"=debug\n"), 0644)
	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvLogLevel)

	if err := LoadEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := Env(EnvLogLevel, "info"); got != "debug" {
		t.Errorf("expected debug, got %s", got)
	}
	if got := Env("CLOTHSIM_UNSET_FOR_TEST", "x"); got != "x" {
		t.Errorf("expected default, got %s", got)
	}
}

func TestGridOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cloth.Gravity = 1
	cfg.Cloth.Bend = true
	opts := cfg.GridOptions()
	if opts.Params.Gravity != 1 || !opts.Bend {
		t.Errorf("options not carried over: %+v", opts)
	}
	if cfg.SphereCenter().Z() != -1 {
		t.Error("sphere center z should default to -1")
	}
}
