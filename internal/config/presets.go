package config

import "sort"

func preset(scene, integrator string, duration float64, fn func(*Config)) *Config {
	c := DefaultConfig()
	c.Scene = scene
	c.Integrator = integrator
	c.Duration = duration
	if fn != nil {
		fn(c)
	}
	return c
}

var Presets = map[string]map[string]*Config{
	"drop": {
		"single": preset("drop", "pgs", 2.0, func(c *Config) {
			c.SceneArgs.Count = 1
		}),
		"column": preset("drop", "pgs", 5.0, func(c *Config) {
			c.SceneArgs.Count = 8
			c.SceneArgs.Spacing = 1.5
		}),
		"bouncy": preset("drop", "pgs", 5.0, func(c *Config) {
			c.SceneArgs.Count = 4
			c.SceneArgs.Spacing = 2.5
			c.SceneArgs.Restitution = 0.8
		}),
	},
	"tower": {
		"small": preset("tower", "pgs", 5.0, func(c *Config) {
			c.SceneArgs.Width = 3
			c.SceneArgs.Height = 5
		}),
		"tall": preset("tower", "small-steps", 8.0, func(c *Config) {
			c.SceneArgs.Width = 5
			c.SceneArgs.Height = 15
			c.Params.VelocityIterations = 8
		}),
	},
	"wrecking-ball": {
		"classic": preset("wrecking-ball", "pgs", 8.0, func(c *Config) {
			c.SceneArgs.Width = 5
			c.SceneArgs.Height = 15
			c.SceneArgs.RopeLength = 5
			c.SceneArgs.BallMass = 10
		}),
		"heavy": preset("wrecking-ball", "small-steps", 8.0, func(c *Config) {
			c.SceneArgs.Width = 3
			c.SceneArgs.Height = 8
			c.SceneArgs.RopeLength = 6
			c.SceneArgs.BallMass = 50
		}),
	},
	"springs": {
		"sweep": preset("springs", "pgs", 6.0, func(c *Config) {
			c.SceneArgs.Count = 30
			c.SceneArgs.Stiffness = 1.0e3
		}),
		"critical": preset("springs", "pgs", 6.0, func(c *Config) {
			c.SceneArgs.Count = 1
			c.SceneArgs.Stiffness = 1.0e3
			c.SceneArgs.DampingRatio = 1
		}),
		"soft": preset("springs", "small-steps", 10.0, func(c *Config) {
			c.SceneArgs.Count = 10
			c.SceneArgs.Stiffness = 50
		}),
	},
	"pyramid": {
		"small": preset("pyramid", "pgs", 5.0, func(c *Config) {
			c.SceneArgs.Height = 5
		}),
		"large": preset("pyramid", "small-steps", 10.0, func(c *Config) {
			c.SceneArgs.Height = 12
			c.Params.VelocityIterations = 8
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, name string) *Config {
	if scenePresets, ok := Presets[scene]; ok {
		if cfg, ok := scenePresets[name]; ok {
			return cfg.Clone()
		}
	}
	return nil
}

// ListPresets returns the preset names for scene in sorted order.
func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
