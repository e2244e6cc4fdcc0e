package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/san-kum/plasmagen/internal/colormap"
	"github.com/san-kum/plasmagen/internal/evolve"
	"github.com/san-kum/plasmagen/internal/render"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPopulationSize = 9
	DefaultMinTerms       = 2
	DefaultMaxTerms       = 6
	DefaultElitism        = 2

	DefaultMutationRate   = 0.3
	DefaultCrossoverRate  = 0.9
	DefaultStructuralRate = 0.1

	DefaultWidth         = 256
	DefaultHeight        = 256
	DefaultPreviewWidth  = 24
	DefaultPreviewHeight = 24
	DefaultFrameCap      = render.DefaultFrameCap
	DefaultFramesPerStep = render.DefaultFramesPerStep
	DefaultFPS           = render.DefaultFPS

	DefaultStoreKind = "sqlite"
	DefaultDataDir   = ".plasmagen"
	DefaultLogLevel  = "info"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ConfigError names the setting that failed validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

type Config struct {
	Seed       int64            `yaml:"seed"`
	Population PopulationConfig `yaml:"population"`
	Search     SearchConfig     `yaml:"search"`
	Render     RenderConfig     `yaml:"render"`
	Store      StoreConfig      `yaml:"store"`
	Log        LogConfig        `yaml:"log"`
}

type PopulationConfig struct {
	Size     int `yaml:"size"`
	MinTerms int `yaml:"min_terms"`
	MaxTerms int `yaml:"max_terms"`
	Elitism  int `yaml:"elitism"`
}

type SearchConfig struct {
	MutationRate    float64 `yaml:"mutation_rate"`
	CrossoverRate   float64 `yaml:"crossover_rate"`
	StructuralRate  float64 `yaml:"structural_rate"`
	AmplitudeJitter float64 `yaml:"amplitude_jitter"`
	PhaseJitter     float64 `yaml:"phase_jitter"`
	ColorJitter     float64 `yaml:"color_jitter"`
	MinAmplitude    float64 `yaml:"min_amplitude"`
	MaxAmplitude    float64 `yaml:"max_amplitude"`
	SpatialMax      int     `yaml:"spatial_max"`
	TemporalMax     int     `yaml:"temporal_max"`
	MaxStops        int     `yaml:"max_stops"`
	MaxCycles       int     `yaml:"max_cycles"`
	FavoriteWeight  float64 `yaml:"favorite_weight"`
	KeepWeight      float64 `yaml:"keep_weight"`
}

type RenderConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	PreviewWidth  int     `yaml:"preview_width"`
	PreviewHeight int     `yaml:"preview_height"`
	FrameCap      int     `yaml:"frame_cap"`
	FramesPerStep int     `yaml:"frames_per_step"`
	FPS           float64 `yaml:"fps"`
	PaletteSize   int     `yaml:"palette_size"`
	Dither        bool    `yaml:"dither"`
	Workers       int     `yaml:"workers"`
}

type StoreConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	p := evolve.DefaultParams()
	return &Config{
		Population: PopulationConfig{
			Size:     DefaultPopulationSize,
			MinTerms: DefaultMinTerms,
			MaxTerms: DefaultMaxTerms,
			Elitism:  DefaultElitism,
		},
		Search: SearchConfig{
			MutationRate:    DefaultMutationRate,
			CrossoverRate:   DefaultCrossoverRate,
			StructuralRate:  DefaultStructuralRate,
			AmplitudeJitter: p.AmplitudeJitter,
			PhaseJitter:     p.PhaseJitter,
			ColorJitter:     p.ColorJitter,
			MinAmplitude:    p.MinAmplitude,
			MaxAmplitude:    p.MaxAmplitude,
			SpatialMax:      p.SpatialMax,
			TemporalMax:     p.TemporalMax,
			MaxStops:        p.MaxStops,
			MaxCycles:       p.MaxCycles,
			FavoriteWeight:  p.FavoriteWeight,
			KeepWeight:      p.KeepWeight,
		},
		Render: RenderConfig{
			Width:         DefaultWidth,
			Height:        DefaultHeight,
			PreviewWidth:  DefaultPreviewWidth,
			PreviewHeight: DefaultPreviewHeight,
			FrameCap:      DefaultFrameCap,
			FramesPerStep: DefaultFramesPerStep,
			FPS:           DefaultFPS,
			PaletteSize:   colormap.DefaultPaletteSize,
		},
		Store: StoreConfig{
			Kind: DefaultStoreKind,
			Path: filepath.Join(DefaultDataDir, "plasmagen.db"),
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
			File:  filepath.Join(DefaultDataDir, "plasmagen.log"),
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
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

// Validate reports the first setting that cannot start a session.
func (c *Config) Validate() error {
	p, r := c.Population, c.Render
	rates := []struct {
		field string
		v     float64
	}{
		{"search.mutation_rate", c.Search.MutationRate},
		{"search.crossover_rate", c.Search.CrossoverRate},
		{"search.structural_rate", c.Search.StructuralRate},
	}

	switch {
	case p.Size < 1:
		return &ConfigError{"population.size", fmt.Sprintf("%d must be at least 1", p.Size)}
	case p.MinTerms < 1:
		return &ConfigError{"population.min_terms", fmt.Sprintf("%d must be at least 1", p.MinTerms)}
	case p.MinTerms > p.MaxTerms:
		return &ConfigError{"population.min_terms", fmt.Sprintf("%d exceeds max_terms %d", p.MinTerms, p.MaxTerms)}
	case p.Elitism < 0:
		return &ConfigError{"population.elitism", "must not be negative"}
	}
	for _, rate := range rates {
		if !(rate.v >= 0 && rate.v <= 1) {
			return &ConfigError{rate.field, fmt.Sprintf("%v outside [0, 1]", rate.v)}
		}
	}
	for _, d := range []struct {
		field string
		v     int
	}{
		{"render.width", r.Width},
		{"render.height", r.Height},
		{"render.preview_width", r.PreviewWidth},
		{"render.preview_height", r.PreviewHeight},
	} {
		if d.v < 1 || d.v > render.MaxDimension {
			return &ConfigError{d.field, fmt.Sprintf("%d outside [1, %d]", d.v, render.MaxDimension)}
		}
	}
	switch {
	case r.FrameCap < 1:
		return &ConfigError{"render.frame_cap", fmt.Sprintf("%d must be at least 1", r.FrameCap)}
	case r.FramesPerStep < 1:
		return &ConfigError{"render.frames_per_step", fmt.Sprintf("%d must be at least 1", r.FramesPerStep)}
	case !(r.FPS > 0) || math.IsInf(r.FPS, 0):
		return &ConfigError{"render.fps", fmt.Sprintf("%v must be positive", r.FPS)}
	case r.PaletteSize < colormap.MinPaletteSize || r.PaletteSize > colormap.MaxPaletteSize:
		return &ConfigError{"render.palette_size", fmt.Sprintf("%d outside [%d, %d]", r.PaletteSize, colormap.MinPaletteSize, colormap.MaxPaletteSize)}
	case r.Workers < 0:
		return &ConfigError{"render.workers", "must not be negative"}
	}

	// Render settings first: EvolveParams borrows render.frame_cap.
	if err := c.EvolveParams().Validate(); err != nil {
		return &ConfigError{"search", err.Error()}
	}

	switch c.Store.Kind {
	case "memory", "sqlite":
	default:
		return &ConfigError{"store.kind", fmt.Sprintf("unknown store %q", c.Store.Kind)}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return &ConfigError{"log.level", err.Error()}
	}
	return nil
}

func (c *Config) EvolveParams() evolve.Params {
	s := c.Search
	return evolve.Params{
		MinTerms:        c.Population.MinTerms,
		MaxTerms:        c.Population.MaxTerms,
		Elitism:         c.Population.Elitism,
		MutationRate:    s.MutationRate,
		CrossoverRate:   s.CrossoverRate,
		StructuralRate:  s.StructuralRate,
		AmplitudeJitter: s.AmplitudeJitter,
		PhaseJitter:     s.PhaseJitter,
		ColorJitter:     s.ColorJitter,
		MinAmplitude:    s.MinAmplitude,
		MaxAmplitude:    s.MaxAmplitude,
		SpatialMax:      s.SpatialMax,
		TemporalMax:     s.TemporalMax,
		MaxStops:        s.MaxStops,
		MaxCycles:       s.MaxCycles,
		FrameCap:        c.Render.FrameCap,
		FavoriteWeight:  s.FavoriteWeight,
		KeepWeight:      s.KeepWeight,
	}
}

func (c *Config) RenderOptions() render.Options {
	return render.Options{
		FrameCap:      c.Render.FrameCap,
		FramesPerStep: c.Render.FramesPerStep,
		PaletteSize:   c.Render.PaletteSize,
		Dither:        c.Render.Dither,
		FPS:           c.Render.FPS,
		Workers:       c.Render.Workers,
	}
}

// TermRange is the term count range for seeded genomes.
func (c *Config) TermRange() evolve.TermRange {
	return evolve.TermRange{Min: c.Population.MinTerms, Max: c.Population.MaxTerms}
}
