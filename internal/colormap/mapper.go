package colormap

import (
	"image/color"
	"math"

	"github.com/san-kum/plasmagen/internal/plasma"
)

const (
	DefaultPaletteSize = 256
	MinPaletteSize     = 2
	MaxPaletteSize     = 256
)

// 8x8 ordered-dither thresholds.
var bayer8 = [8][8]uint8{
	{0, 48, 12, 60, 3, 51, 15, 63},
	{32, 16, 44, 28, 35, 19, 47, 31},
	{8, 56, 4, 52, 11, 59, 7, 55},
	{40, 24, 36, 20, 43, 27, 39, 23},
	{2, 50, 14, 62, 1, 49, 13, 61},
	{34, 18, 46, 30, 33, 17, 45, 29},
	{10, 58, 6, 54, 9, 57, 5, 53},
	{42, 26, 38, 22, 41, 25, 37, 21},
}

// Mapper samples a gradient into a fixed palette. Palette entry i is the colour at
// gradient position i/size, so indices wrap exactly like the gradient does.
type Mapper struct {
	gradient *Gradient
	palette  color.Palette
	size     int
	dither   bool
}

// NewMapper builds a palette of size colours (clamped to [2, 256]).
func NewMapper(cm plasma.ColorMap, size int, dither bool) *Mapper {
	if size <= 0 {
		size = DefaultPaletteSize
	}
	size = min(max(size, MinPaletteSize), MaxPaletteSize)

	g := NewGradient(cm)
	m := &Mapper{gradient: g, palette: make(color.Palette, size), size: size, dither: dither}
	for i := range m.palette {
		m.palette[i] = g.At(float64(i) / float64(size))
	}
	return m
}

// Palette is the fixed colour table shared by every frame of one genome.
func (m *Mapper) Palette() color.Palette { return m.palette }

// Index returns the palette index for intensity v at pixel (x, y). Without dithering
// the pixel position is ignored.
func (m *Mapper) Index(v float64, x, y int) uint8 {
	s := m.gradient.Position(v) * float64(m.size)
	if m.dither {
		s += (float64(bayer8[y&7][x&7]) + 0.5) / 64
	} else {
		s += 0.5
	}
	return uint8(int(math.Floor(s)) % m.size)
}

// Color is the palette colour for intensity v at pixel (x, y).
func (m *Mapper) Color(v float64, x, y int) color.RGBA {
	return m.palette[m.Index(v, x, y)].(color.RGBA)
}
