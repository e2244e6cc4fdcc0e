package plasma

import (
	"math"
	"slices"
)

// ColorStop is one control point of the cyclic gradient.
type ColorStop struct {
	R        uint8   `json:"r"`
	G        uint8   `json:"g"`
	B        uint8   `json:"b"`
	Position float64 `json:"pos"`
}

// ColorMap describes how normalised intensity becomes colour. The gradient is
// repeated Cycles times across the intensity range and wraps at both ends.
type ColorMap struct {
	Stops  []ColorStop `json:"stops"`
	Cycles int         `json:"cycles"`
}

func (c ColorMap) Validate() error {
	if len(c.Stops) == 0 {
		return invalid("colors", "no color stops")
	}
	if c.Cycles < 1 {
		return invalid("colors", "cycle count %d must be >= 1", c.Cycles)
	}
	for i, s := range c.Stops {
		if !(s.Position >= 0 && s.Position < 1) {
			return invalid("colors", "stop %d position %v outside [0, 1)", i, s.Position)
		}
	}
	return nil
}

func (c ColorMap) Clone() ColorMap {
	return ColorMap{Stops: slices.Clone(c.Stops), Cycles: c.Cycles}
}

// Genome is the unit the search evolves. Term order does not affect the field.
type Genome struct {
	Terms  []WaveTerm `json:"terms"`
	Colors ColorMap   `json:"colors"`
}

// Limits bounds a genome beyond its structural invariants. Zero fields are unchecked.
type Limits struct {
	MinTerms int
	MaxTerms int
	FrameCap int
}

func (g Genome) Clone() Genome {
	return Genome{Terms: slices.Clone(g.Terms), Colors: g.Colors.Clone()}
}

// Equal reports whether two genomes are identical term for term.
func (g Genome) Equal(o Genome) bool {
	return slices.Equal(g.Terms, o.Terms) &&
		g.Colors.Cycles == o.Colors.Cycles &&
		slices.Equal(g.Colors.Stops, o.Colors.Stops)
}

// LoopLength is the least common multiple of the temporal frequencies. It saturates
// at math.MaxInt instead of overflowing.
func (g Genome) LoopLength() int {
	l := 1
	for _, t := range g.Terms {
		if t.Temporal < 1 {
			continue
		}
		l = LCM(l, t.Temporal)
		if l == math.MaxInt {
			break
		}
	}
	return l
}

// AmplitudeSum bounds |field| and is used for normalisation.
func (g Genome) AmplitudeSum() float64 {
	var s float64
	for _, t := range g.Terms {
		s += math.Abs(t.Amplitude)
	}
	return s
}

func (g Genome) Validate(lim Limits) error {
	if len(g.Terms) == 0 {
		return invalid("terms", "genome has no wave terms")
	}
	if lim.MinTerms > 0 && len(g.Terms) < lim.MinTerms {
		return invalid("terms", "count %d below minimum %d", len(g.Terms), lim.MinTerms)
	}
	if lim.MaxTerms > 0 && len(g.Terms) > lim.MaxTerms {
		return invalid("terms", "count %d above maximum %d", len(g.Terms), lim.MaxTerms)
	}
	for _, t := range g.Terms {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	if err := g.Colors.Validate(); err != nil {
		return err
	}
	if lim.FrameCap > 0 {
		if l := g.LoopLength(); l > lim.FrameCap {
			return invalid("loop length", "%d exceeds frame cap %d", l, lim.FrameCap)
		}
	}
	return nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM is the least common multiple of two positive integers, saturating at
// math.MaxInt.
func LCM(a, b int) int {
	q := a / gcd(a, b)
	if q > math.MaxInt/b {
		return math.MaxInt
	}
	return q * b
}
