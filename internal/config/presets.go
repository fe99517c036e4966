package config

import "sort"

var Presets = map[string]map[string]*Config{
	"hang": {
		"default": preset("hang", nil),
		"coarse": preset("hang", func(c *Config) {
			c.Cloth.N = 11
		}),
		"stiff": preset("hang", func(c *Config) {
			c.Cloth.Stiffness = 1000
			c.Solver.Iterations = 10
		}),
		"silk": preset("hang", func(c *Config) {
			c.Cloth.Stiffness = 40
			c.Cloth.Bend = true
			c.Constraints.CriticalStrain = 0.05
		}),
		"reference": preset("hang", func(c *Config) {
			c.Cloth.N = 9
			c.Solver.Name = "direct"
			c.Solver.Iterations = 1
		}),
	},
	"drop": {
		"default": preset("drop", nil),
		"coarse": preset("drop", func(c *Config) {
			c.Cloth.N = 11
		}),
		"fine": preset("drop", func(c *Config) {
			c.Cloth.N = 45
			c.Solver.SubSteps = 4
		}),
		"small_ball": preset("drop", func(c *Config) {
			c.Sphere.Radius = 0.3
			c.Sphere.Center = [3]float64{0, 0, -0.6}
		}),
	},
}

func preset(demo string, mod func(*Config)) *Config {
	c := DefaultConfig()
	c.Demo = demo
	if mod != nil {
		mod(c)
	}
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(demo, name string) *Config {
	demoPresets, ok := Presets[demo]
	if !ok {
		return nil
	}
	cfg, ok := demoPresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(demo string) []string {
	demoPresets, ok := Presets[demo]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(demoPresets))
	for name := range demoPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
