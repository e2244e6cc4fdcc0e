package evolve

import (
	"math"
	"math/rand"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/plasmagen/internal/plasma"
)

// temporalTries bounds resampling of a temporal frequency that would push the
// loop length past the frame cap. Frequency 1 always fits.
const temporalTries = 8

func (e *Engine) randomGenome(rng *rand.Rand, minTerms, maxTerms int) plasma.Genome {
	n := minTerms + rng.Intn(maxTerms-minTerms+1)
	g := plasma.Genome{Terms: make([]plasma.WaveTerm, 0, n)}
	loop := 1
	for range n {
		t := e.randomTerm(rng, loop)
		loop = plasma.LCM(loop, t.Temporal)
		g.Terms = append(g.Terms, t)
	}
	g.Colors = e.randomColors(rng)
	return g
}

// randomTerm samples a term whose temporal frequency keeps lcm(loop, t) within
// the frame cap.
func (e *Engine) randomTerm(rng *rand.Rand, loop int) plasma.WaveTerm {
	p := e.params
	t := plasma.WaveTerm{
		Amplitude: p.MinAmplitude + rng.Float64()*(p.MaxAmplitude-p.MinAmplitude),
		KX:        1 + rng.Intn(p.SpatialMax),
		KY:        1 + rng.Intn(p.SpatialMax),
		Phase:     plasma.WrapPhase(rng.Float64() * 2 * math.Pi),
		Temporal:  1,
	}
	for range temporalTries {
		c := 1 + rng.Intn(p.TemporalMax)
		if plasma.LCM(loop, c) <= p.FrameCap {
			t.Temporal = c
			break
		}
	}
	return t
}

func (e *Engine) randomColors(rng *rand.Rand) plasma.ColorMap {
	n := 2 + rng.Intn(max(1, e.params.MaxStops-1))
	n = min(n, e.params.MaxStops)
	cm := plasma.ColorMap{Stops: make([]plasma.ColorStop, n), Cycles: 1 + rng.Intn(e.params.MaxCycles)}
	for i := range cm.Stops {
		cm.Stops[i] = randomStop(rng)
	}
	slices.SortStableFunc(cm.Stops, func(a, b plasma.ColorStop) int {
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		}
		return 0
	})
	return cm
}

func randomStop(rng *rand.Rand) plasma.ColorStop {
	c := colorful.Hsl(rng.Float64()*360, 0.5+0.5*rng.Float64(), 0.2+0.6*rng.Float64())
	r, g, b := c.Clamped().RGB255()
	return plasma.ColorStop{R: r, G: g, B: b, Position: wrapUnit(rng.Float64())}
}

// wrapUnit maps any value onto [0, 1).
func wrapUnit(v float64) float64 {
	v -= math.Floor(v)
	if v >= 1 {
		v = 0
	}
	return v
}
