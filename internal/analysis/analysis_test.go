package analysis

import (
	"testing"

	"github.com/san-kum/plasmagen/internal/plasma"
)

func genome(temporal ...int) plasma.Genome {
	g := plasma.Genome{Colors: plasma.ColorMap{Stops: []plasma.ColorStop{{R: 255}}, Cycles: 1}}
	for i, t := range temporal {
		g.Terms = append(g.Terms, plasma.WaveTerm{
			Amplitude: 1,
			KX:        1 + i,
			KY:        2,
			Phase:     0.5,
			Temporal:  t,
		})
	}
	return g
}

func TestSpectrumPeaksAtTemporalFrequencies(t *testing.T) {
	tests := []struct {
		temporal []int
		fps      int
		peaks    []int
	}{
		{[]int{3}, 4, []int{3}},
		{[]int{2, 3}, 2, []int{2, 3}},
		{[]int{1, 4}, 3, []int{1, 4}},
	}

	for _, tt := range tests {
		bins := Spectrum(plasma.NewField(genome(tt.temporal...), tt.fps), 0.3, 0.6)
		want := map[int]bool{0: true}
		for _, p := range tt.peaks {
			want[p] = true
		}
		for k, m := range bins {
			if want[k] {
				continue
			}
			if m > 1e-9 {
				t.Errorf("temporal %v: unexpected energy %g in bin %d", tt.temporal, m, k)
			}
		}
		for _, p := range tt.peaks {
			if bins[p] < 1e-3 {
				t.Errorf("temporal %v: missing energy in bin %d", tt.temporal, p)
			}
		}
	}
}

func TestDominantFrequency(t *testing.T) {
	bins := Spectrum(plasma.NewField(genome(3), 4), 0.1, 0.2)
	if got := DominantFrequency(bins); got != 3 {
		t.Errorf("expected dominant bin 3, got %d", got)
	}
	if got := DominantFrequency([]float64{5, 0, 0}); got != 0 {
		t.Errorf("flat signal should report 0, got %d", got)
	}
}

func TestSeamDeltaIsZero(t *testing.T) {
	for _, temporal := range [][]int{{1}, {2, 3}, {4, 5, 3}} {
		f := plasma.NewField(genome(temporal...), 3)
		if d := SeamDelta(f, 16, 12); d != 0 {
			t.Errorf("temporal %v: seam delta %g, want 0", temporal, d)
		}
	}
}

func TestSummarize(t *testing.T) {
	same := []plasma.Genome{genome(2, 3), genome(2, 3), genome(2, 3)}
	s := Summarize(same)
	if s.Size != 3 {
		t.Errorf("expected size 3, got %d", s.Size)
	}
	if s.MeanTerms != 2 || s.StdTerms != 0 {
		t.Errorf("expected 2 terms with no spread, got %v ± %v", s.MeanTerms, s.StdTerms)
	}
	if s.MeanLoop != 6 || s.MaxLoop != 6 {
		t.Errorf("expected loop 6, got mean %v max %v", s.MeanLoop, s.MaxLoop)
	}
	if s.Diversity != 0 {
		t.Errorf("identical genomes should have zero diversity, got %v", s.Diversity)
	}

	mixed := Summarize([]plasma.Genome{genome(1), genome(2, 3, 4)})
	if mixed.Diversity <= 0 {
		t.Errorf("expected positive diversity, got %v", mixed.Diversity)
	}
	if mixed.MaxLoop != 12 {
		t.Errorf("expected max loop 12, got %v", mixed.MaxLoop)
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	if s := Summarize(nil); s.Size != 0 {
		t.Errorf("expected empty stats, got %+v", s)
	}
	one := Summarize([]plasma.Genome{genome(2)})
	if one.StdTerms != 0 || one.Diversity != 0 {
		t.Errorf("single genome should have no spread: %+v", one)
	}
	if len(one.Map()) != 7 {
		t.Errorf("expected 7 stats, got %d", len(one.Map()))
	}
}
