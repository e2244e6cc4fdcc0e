package evolve

import (
	"fmt"
	"math"
)

// Params tunes the search. Rates are probabilities in [0, 1].
type Params struct {
	MinTerms int
	MaxTerms int
	// Elitism is the number of survivors copied unchanged into the next
	// generation. Favorites always survive even past this count.
	Elitism int

	MutationRate   float64
	CrossoverRate  float64
	StructuralRate float64

	// AmplitudeJitter scales amplitude by a factor in [1-j, 1+j].
	AmplitudeJitter float64
	// PhaseJitter is the largest phase shift in radians.
	PhaseJitter float64
	// ColorJitter is the largest hue shift as a fraction of the colour wheel.
	ColorJitter float64

	MinAmplitude float64
	MaxAmplitude float64
	SpatialMax   int
	TemporalMax  int
	MaxStops     int
	MaxCycles    int

	// FrameCap bounds the loop length of seeded and spawned genomes.
	FrameCap int

	FavoriteWeight float64
	KeepWeight     float64
}

func DefaultParams() Params {
	return Params{
		MinTerms:        2,
		MaxTerms:        6,
		Elitism:         2,
		MutationRate:    0.3,
		CrossoverRate:   0.9,
		StructuralRate:  0.1,
		AmplitudeJitter: 0.1,
		PhaseJitter:     math.Pi / 4,
		ColorJitter:     0.05,
		MinAmplitude:    0.2,
		MaxAmplitude:    1.0,
		SpatialMax:      6,
		TemporalMax:     4,
		MaxStops:        5,
		MaxCycles:       3,
		FrameCap:        60,
		FavoriteWeight:  3,
		KeepWeight:      1,
	}
}

func (p Params) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"mutation rate", p.MutationRate},
		{"crossover rate", p.CrossoverRate},
		{"structural rate", p.StructuralRate},
	}
	for _, r := range rates {
		if !(r.v >= 0 && r.v <= 1) {
			return fmt.Errorf("%w: %s %v outside [0, 1]", ErrInvalidParams, r.name, r.v)
		}
	}
	switch {
	case p.MinTerms < 1:
		return fmt.Errorf("%w: min terms %d must be >= 1", ErrInvalidParams, p.MinTerms)
	case p.MinTerms > p.MaxTerms:
		return fmt.Errorf("%w: min terms %d > max terms %d", ErrInvalidParams, p.MinTerms, p.MaxTerms)
	case p.Elitism < 0:
		return fmt.Errorf("%w: elitism %d is negative", ErrInvalidParams, p.Elitism)
	case !(p.MinAmplitude > 0) || p.MinAmplitude > p.MaxAmplitude:
		return fmt.Errorf("%w: amplitude range [%v, %v]", ErrInvalidParams, p.MinAmplitude, p.MaxAmplitude)
	case p.SpatialMax < 1 || p.TemporalMax < 1:
		return fmt.Errorf("%w: spatial max %d and temporal max %d must be >= 1", ErrInvalidParams, p.SpatialMax, p.TemporalMax)
	case p.MaxStops < 1 || p.MaxCycles < 1:
		return fmt.Errorf("%w: max stops %d and max cycles %d must be >= 1", ErrInvalidParams, p.MaxStops, p.MaxCycles)
	case p.FrameCap < 1:
		return fmt.Errorf("%w: frame cap %d must be >= 1", ErrInvalidParams, p.FrameCap)
	case p.AmplitudeJitter < 0 || p.PhaseJitter < 0 || p.ColorJitter < 0:
		return fmt.Errorf("%w: jitter must be non-negative", ErrInvalidParams)
	case p.FavoriteWeight <= 0 || p.KeepWeight <= 0:
		return fmt.Errorf("%w: parent weights must be positive", ErrInvalidParams)
	}
	return nil
}
