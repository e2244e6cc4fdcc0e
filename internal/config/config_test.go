package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Population.Size != DefaultPopulationSize {
		t.Errorf("expected population %d, got %d", DefaultPopulationSize, cfg.Population.Size)
	}
	if cfg.Render.FrameCap <= 0 {
		t.Error("frame cap should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		field string
		mod   func(*Config)
	}{
		{"zero population", "population.size", func(c *Config) { c.Population.Size = 0 }},
		{"min above max", "population.min_terms", func(c *Config) { c.Population.MinTerms = 7 }},
		{"mutation rate", "search.mutation_rate", func(c *Config) { c.Search.MutationRate = 1.2 }},
		{"crossover rate", "search.crossover_rate", func(c *Config) { c.Search.CrossoverRate = -1 }},
		{"frame cap", "render.frame_cap", func(c *Config) { c.Render.FrameCap = 0 }},
		{"frame cap negative", "render.frame_cap", func(c *Config) { c.Render.FrameCap = -3 }},
		{"spatial max", "search", func(c *Config) { c.Search.SpatialMax = 0 }},
		{"width", "render.width", func(c *Config) { c.Render.Width = 0 }},
		{"palette", "render.palette_size", func(c *Config) { c.Render.PaletteSize = 1 }},
		{"store", "store.kind", func(c *Config) { c.Store.Kind = "redis" }},
		{"log level", "log.level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			err := cfg.Validate()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, ce.Field)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Error("ConfigError should wrap ErrInvalidConfig")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plasmagen.yaml")
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Population.Size = 6
	cfg.Render.Dither = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Seed != 42 || got.Population.Size != 6 || !got.Render.Dither {
		t.Errorf("roundtrip lost values: %+v", got)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("population:\n  size: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Population.Size != 3 {
		t.Errorf("expected size 3, got %d", got.Population.Size)
	}
	if got.Population.MaxTerms != DefaultMaxTerms {
		t.Errorf("expected default max terms, got %d", got.Population.MaxTerms)
	}
	if got.Store.Kind != DefaultStoreKind {
		t.Errorf("expected default store kind, got %q", got.Store.Kind)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("population: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("tiny")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Population.Size != 4 {
		t.Errorf("expected size 4, got %d", cfg.Population.Size)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestEvolveParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.FrameCap = 24
	p := cfg.EvolveParams()
	if p.FrameCap != 24 {
		t.Errorf("expected frame cap 24, got %d", p.FrameCap)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("params should validate: %v", err)
	}
}
