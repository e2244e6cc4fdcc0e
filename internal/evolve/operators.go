package evolve

import (
	"math/rand"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/plasmagen/internal/plasma"
)

// crossover splices a's terms before a random cut with b's terms after another,
// and does the same for colour stops.
func (e *Engine) crossover(a, b plasma.Genome, rng *rand.Rand) plasma.Genome {
	child := plasma.Genome{
		Terms: splice(a.Terms, b.Terms, rng),
		Colors: plasma.ColorMap{
			Stops:  splice(a.Colors.Stops, b.Colors.Stops, rng),
			Cycles: a.Colors.Cycles,
		},
	}
	if rng.Intn(2) == 1 {
		child.Colors.Cycles = b.Colors.Cycles
	}
	if len(child.Colors.Stops) == 0 {
		child.Colors.Stops = slices.Clone(a.Colors.Stops)
	}
	if len(child.Colors.Stops) > e.params.MaxStops {
		child.Colors.Stops = child.Colors.Stops[:e.params.MaxStops]
	}
	return child
}

func splice[T any](a, b []T, rng *rand.Rand) []T {
	i := rng.Intn(len(a) + 1)
	j := rng.Intn(len(b) + 1)
	out := make([]T, 0, i+len(b)-j)
	out = append(out, a[:i]...)
	return append(out, b[j:]...)
}

// mutate perturbs g in place. Each term and colour stop mutates with
// MutationRate; structural changes happen with StructuralRate.
func (e *Engine) mutate(g *plasma.Genome, rng *rand.Rand) {
	p := e.params
	for i := range g.Terms {
		if rng.Float64() < p.MutationRate {
			g.Terms[i] = e.mutateTerm(g.Terms[i], rng)
		}
	}
	if rng.Float64() < p.StructuralRate {
		if rng.Intn(2) == 0 && len(g.Terms) < p.MaxTerms {
			at := rng.Intn(len(g.Terms) + 1)
			g.Terms = slices.Insert(g.Terms, at, e.randomTerm(rng, g.LoopLength()))
		} else if len(g.Terms) > p.MinTerms {
			at := rng.Intn(len(g.Terms))
			g.Terms = slices.Delete(g.Terms, at, at+1)
		}
	}

	for i := range g.Colors.Stops {
		if rng.Float64() < p.MutationRate {
			g.Colors.Stops[i] = e.mutateStop(g.Colors.Stops[i], rng)
		}
	}
	if rng.Float64() < p.StructuralRate {
		switch {
		case rng.Intn(2) == 0 && len(g.Colors.Stops) < p.MaxStops:
			g.Colors.Stops = append(g.Colors.Stops, randomStop(rng))
		case len(g.Colors.Stops) > 1:
			at := rng.Intn(len(g.Colors.Stops))
			g.Colors.Stops = slices.Delete(g.Colors.Stops, at, at+1)
		}
	}
	if rng.Float64() < p.MutationRate {
		g.Colors.Cycles = clamp(g.Colors.Cycles+step(rng), 1, p.MaxCycles)
	}
}

func (e *Engine) mutateTerm(t plasma.WaveTerm, rng *rand.Rand) plasma.WaveTerm {
	p := e.params
	switch rng.Intn(5) {
	case 0:
		a := t.Amplitude * (1 + (2*rng.Float64()-1)*p.AmplitudeJitter)
		t.Amplitude = min(max(a, p.MinAmplitude), p.MaxAmplitude)
	case 1:
		t.KX = clamp(t.KX+step(rng), 1, p.SpatialMax)
	case 2:
		t.KY = clamp(t.KY+step(rng), 1, p.SpatialMax)
	case 3:
		t.Temporal = max(1, t.Temporal+step(rng))
	case 4:
		t.Phase = plasma.WrapPhase(t.Phase + (2*rng.Float64()-1)*p.PhaseJitter)
	}
	return t
}

func (e *Engine) mutateStop(s plasma.ColorStop, rng *rand.Rand) plasma.ColorStop {
	j := e.params.ColorJitter
	c := colorful.Color{R: float64(s.R) / 255, G: float64(s.G) / 255, B: float64(s.B) / 255}
	h, sat, l := c.Hsl()
	h = 360 * wrapUnit(h/360+(2*rng.Float64()-1)*j)
	sat = min(max(sat+(2*rng.Float64()-1)*j, 0), 1)
	l = min(max(l+(2*rng.Float64()-1)*j, 0), 1)
	s.R, s.G, s.B = colorful.Hsl(h, sat, l).Clamped().RGB255()
	s.Position = wrapUnit(s.Position + (2*rng.Float64()-1)*j)
	return s
}

// fitTerms brings the term count back within [MinTerms, MaxTerms], padding with
// terms borrowed from the parents.
func (e *Engine) fitTerms(g *plasma.Genome, a, b plasma.Genome, rng *rand.Rand) {
	p := e.params
	for len(g.Terms) > p.MaxTerms {
		at := rng.Intn(len(g.Terms))
		g.Terms = slices.Delete(g.Terms, at, at+1)
	}
	pool := append(slices.Clone(a.Terms), b.Terms...)
	for len(g.Terms) < p.MinTerms {
		if len(pool) == 0 {
			g.Terms = append(g.Terms, e.randomTerm(rng, g.LoopLength()))
			continue
		}
		g.Terms = append(g.Terms, pool[rng.Intn(len(pool))])
	}
}

func step(rng *rand.Rand) int {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
