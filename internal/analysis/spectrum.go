package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/plasmagen/internal/plasma"
)

// Spectrum returns the magnitude of bins 0..n/2 of the intensity at (x, y)
// sampled once per frame over one loop. Bin k counts cycles per loop.
func Spectrum(f *plasma.Field, x, y float64) []float64 {
	n := f.Frames()
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = f.At(x, y, i)
	}
	coeffs := fft.FFTReal(samples)
	out := make([]float64, n/2+1)
	for k := range out {
		out[k] = cmplx.Abs(coeffs[k]) / float64(n)
	}
	return out
}

// DominantFrequency is the strongest non-DC bin, or 0 for a flat signal.
func DominantFrequency(bins []float64) int {
	best, bin := 0.0, 0
	for k := 1; k < len(bins); k++ {
		if bins[k] > best {
			best, bin = bins[k], k
		}
	}
	return bin
}

// SeamDelta renders the frame after the last one at w x h and returns the
// largest absolute intensity difference from frame 0. A seamless loop gives 0.
func SeamDelta(f *plasma.Field, w, h int) float64 {
	grid := f.Grid(w, h)
	first := make([]float64, w)
	wrapped := make([]float64, w)
	var worst float64
	for y := 0; y < h; y++ {
		grid.Row(0, y, first)
		grid.Row(f.Frames(), y, wrapped)
		for x := range first {
			d := first[x] - wrapped[x]
			if d < 0 {
				d = -d
			}
			worst = max(worst, d)
		}
	}
	return worst
}
