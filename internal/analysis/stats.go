package analysis

import (
	"math"

	"github.com/san-kum/plasmagen/internal/plasma"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises a population.
type Stats struct {
	Size          int
	MeanTerms     float64
	StdTerms      float64
	MeanLoop      float64
	MaxLoop       float64
	MeanAmplitude float64
	// Diversity is the mean pairwise distance between genome feature vectors.
	Diversity float64
}

// Map flattens s for storage.
func (s Stats) Map() map[string]float64 {
	return map[string]float64{
		"size":           float64(s.Size),
		"mean_terms":     s.MeanTerms,
		"std_terms":      s.StdTerms,
		"mean_loop":      s.MeanLoop,
		"max_loop":       s.MaxLoop,
		"mean_amplitude": s.MeanAmplitude,
		"diversity":      s.Diversity,
	}
}

func Summarize(genomes []plasma.Genome) Stats {
	n := len(genomes)
	if n == 0 {
		return Stats{}
	}
	terms := make([]float64, n)
	loops := make([]float64, n)
	amps := make([]float64, n)
	features := make([][]float64, n)
	for i, g := range genomes {
		terms[i] = float64(len(g.Terms))
		loops[i] = float64(g.LoopLength())
		if len(g.Terms) > 0 {
			amps[i] = g.AmplitudeSum() / float64(len(g.Terms))
		}
		features[i] = featureVector(g)
	}

	s := Stats{
		Size:          n,
		MeanTerms:     stat.Mean(terms, nil),
		MeanLoop:      stat.Mean(loops, nil),
		MaxLoop:       floats.Max(loops),
		MeanAmplitude: stat.Mean(amps, nil),
	}
	if n > 1 {
		s.StdTerms = stat.StdDev(terms, nil)
		var sum float64
		var pairs int
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				sum += floats.Distance(features[i], features[j], 2)
				pairs++
			}
		}
		s.Diversity = sum / float64(pairs)
	}
	return s
}

// featureVector describes a genome by order-independent aggregates so that
// reordered terms compare equal.
func featureVector(g plasma.Genome) []float64 {
	v := make([]float64, 8)
	if len(g.Terms) == 0 {
		return v
	}
	kx := make([]float64, len(g.Terms))
	ky := make([]float64, len(g.Terms))
	tf := make([]float64, len(g.Terms))
	for i, t := range g.Terms {
		kx[i], ky[i], tf[i] = float64(t.KX), float64(t.KY), float64(t.Temporal)
	}
	v[0] = float64(len(g.Terms))
	v[1] = stat.Mean(kx, nil)
	v[2] = stat.Mean(ky, nil)
	v[3] = stat.Mean(tf, nil)
	v[4] = math.Log2(float64(g.LoopLength()))
	v[5] = float64(g.Colors.Cycles)
	v[6] = float64(len(g.Colors.Stops))
	var hue float64
	for _, s := range g.Colors.Stops {
		hue += (float64(s.R) - float64(s.B)) / 255
	}
	v[7] = hue / float64(max(1, len(g.Colors.Stops)))
	return v
}
