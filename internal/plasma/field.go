package plasma

import (
	"math"
	"slices"
)

// Field evaluates a genome over normalised coordinates and integer frames.
type Field struct {
	terms  []WaveTerm
	ampSum float64
	frames int
	cycle  *cycleTable
}

// NewField prepares g for evaluation with framesPerStep frames per loop-length unit,
// giving LoopLength()*framesPerStep frames per loop.
func NewField(g Genome, framesPerStep int) *Field {
	if framesPerStep < 1 {
		framesPerStep = 1
	}
	frames := g.LoopLength() * framesPerStep
	return &Field{
		terms:  slices.Clone(g.Terms),
		ampSum: g.AmplitudeSum(),
		frames: frames,
		cycle:  cycleTableFor(frames),
	}
}

// Evaluate returns the normalised intensity of g at (x, y) and frame, with one frame
// per loop-length unit.
func Evaluate(g Genome, x, y float64, frame int) float64 {
	return NewField(g, 1).At(x, y, frame)
}

// Frames is the number of frames in one loop.
func (f *Field) Frames() int { return f.frames }

// At returns the intensity in [0, 1] at (x, y) in [0,1)x[0,1) and any integer frame.
func (f *Field) At(x, y float64, frame int) float64 {
	var sum float64
	for _, t := range f.terms {
		sx, cx := math.Sincos(ColumnAngle(t, x))
		sy, cy := math.Sincos(RowAngle(t, y))
		st, ct := f.cycle.at(t.Temporal, frame)
		sum += termValue(t.Amplitude, sx, cx, sy, cy, st, ct)
	}
	return f.normalize(sum)
}

func (f *Field) normalize(sum float64) float64 {
	if f.ampSum == 0 {
		return 0
	}
	v := (sum + f.ampSum) / (2 * f.ampSum)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Grid is a Field bound to a pixel resolution, with per-term column and row tables so a
// whole row is evaluated without calling any trigonometric function.
type Grid struct {
	field          *Field
	w, h           int
	colSin, colCos []float64
	rowSin, rowCos []float64
}

// Grid precomputes tables for a w x h image. Pixel (px, py) samples the field at
// (px/w, py/h).
func (f *Field) Grid(w, h int) *Grid {
	n := len(f.terms)
	g := &Grid{
		field:  f,
		w:      w,
		h:      h,
		colSin: make([]float64, n*w),
		colCos: make([]float64, n*w),
		rowSin: make([]float64, n*h),
		rowCos: make([]float64, n*h),
	}
	for i, t := range f.terms {
		for px := 0; px < w; px++ {
			g.colSin[i*w+px], g.colCos[i*w+px] = math.Sincos(ColumnAngle(t, float64(px)/float64(w)))
		}
		for py := 0; py < h; py++ {
			g.rowSin[i*h+py], g.rowCos[i*h+py] = math.Sincos(RowAngle(t, float64(py)/float64(h)))
		}
	}
	return g
}

func (g *Grid) Width() int    { return g.w }
func (g *Grid) Height() int   { return g.h }
func (g *Grid) Field() *Field { return g.field }

// Row writes the intensities of row y at frame into dst[:Width()].
func (g *Grid) Row(frame, y int, dst []float64) {
	dst = dst[:g.w]
	clear(dst)
	for i, t := range g.field.terms {
		st, ct := g.field.cycle.at(t.Temporal, frame)
		sy, cy := g.rowSin[i*g.h+y], g.rowCos[i*g.h+y]
		cs := g.colSin[i*g.w : (i+1)*g.w]
		cc := g.colCos[i*g.w : (i+1)*g.w]
		for px := range dst {
			dst[px] += termValue(t.Amplitude, cs[px], cc[px], sy, cy, st, ct)
		}
	}
	for px, v := range dst {
		dst[px] = g.field.normalize(v)
	}
}
