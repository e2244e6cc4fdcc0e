package config

import (
	"maps"
	"slices"
)

// Presets are named starting points layered over DefaultConfig.
var Presets = map[string]func(*Config){
	"calm": func(c *Config) {
		c.Search.MutationRate = 0.15
		c.Search.StructuralRate = 0.05
		c.Search.SpatialMax = 3
		c.Search.TemporalMax = 2
		c.Render.FPS = 10
	},
	"busy": func(c *Config) {
		c.Population.MaxTerms = 9
		c.Search.MutationRate = 0.5
		c.Search.StructuralRate = 0.25
		c.Search.SpatialMax = 10
		c.Search.TemporalMax = 6
		c.Search.MaxCycles = 5
		c.Render.FPS = 24
	},
	"tiny": func(c *Config) {
		c.Population.Size = 4
		c.Render.Width = 64
		c.Render.Height = 64
		c.Render.PreviewWidth = 12
		c.Render.PreviewHeight = 12
		c.Render.FramesPerStep = 4
		c.Render.PaletteSize = 32
		c.Render.Dither = true
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// ApplyPreset layers the named preset over cfg and reports whether it exists.
func ApplyPreset(cfg *Config, name string) bool {
	apply, ok := Presets[name]
	if ok {
		apply(cfg)
	}
	return ok
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
