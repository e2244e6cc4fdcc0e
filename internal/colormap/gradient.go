// Package colormap turns normalised plasma intensity into colour through a cyclic
// gradient. Blending is linear per channel in linear RGB.
package colormap

import (
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/plasmagen/internal/plasma"
)

type stop struct {
	c   colorful.Color // linear RGB
	pos float64
}

// Gradient is a sorted, cyclic view of a ColorMap.
type Gradient struct {
	stops  []stop
	cycles int
}

func NewGradient(cm plasma.ColorMap) *Gradient {
	g := &Gradient{cycles: max(cm.Cycles, 1)}
	for _, s := range cm.Stops {
		c := colorful.Color{R: float64(s.R) / 255, G: float64(s.G) / 255, B: float64(s.B) / 255}
		r, gg, b := c.LinearRgb()
		g.stops = append(g.stops, stop{c: colorful.Color{R: r, G: gg, B: b}, pos: wrap(s.Position)})
	}
	if len(g.stops) == 0 {
		g.stops = []stop{{c: colorful.Color{R: 0.5, G: 0.5, B: 0.5}}}
	}
	sort.SliceStable(g.stops, func(i, j int) bool { return g.stops[i].pos < g.stops[j].pos })
	return g
}

// Position maps intensity onto the gradient cycle [0, 1).
func (g *Gradient) Position(v float64) float64 {
	return wrap(v * float64(g.cycles))
}

// At returns the colour at gradient position p; p wraps, so 0 and 1 are the same colour.
func (g *Gradient) At(p float64) color.RGBA {
	p = wrap(p)
	n := len(g.stops)
	if n == 1 {
		return toRGBA(g.stops[0].c)
	}

	i := sort.Search(n, func(i int) bool { return g.stops[i].pos > p }) - 1
	if i < 0 {
		i = n - 1
	}
	from, to := g.stops[i], g.stops[(i+1)%n]

	dist := wrap(to.pos - from.pos)
	if dist == 0 {
		return toRGBA(from.c)
	}
	t := wrap(p-from.pos) / dist
	return toRGBA(lerp(from.c, to.c, t))
}

// Interpolate is the colour of intensity v under cm.
func Interpolate(cm plasma.ColorMap, v float64) color.RGBA {
	g := NewGradient(cm)
	return g.At(g.Position(v))
}

func lerp(a, b colorful.Color, t float64) colorful.Color {
	return colorful.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

func toRGBA(linear colorful.Color) color.RGBA {
	r, g, b := colorful.LinearRgb(linear.R, linear.G, linear.B).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func wrap(p float64) float64 {
	p -= math.Floor(p)
	if p >= 1 {
		p = 0
	}
	return p
}
