package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

const (
	upperHalf = "▀"
	reset     = "\x1b[0m"
)

// Thumbnail draws a paletted frame with half-block cells, two pixel rows per
// terminal line, using 24-bit colour escapes.
func Thumbnail(frame *image.Paletted) string {
	b := frame.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := rgb(frame.At(x, y))
			bottom := top
			if y+1 < b.Max.Y {
				bottom = rgb(frame.At(x, y+1))
			}
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%s",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B, upperHalf)
		}
		sb.WriteString(reset)
	}
	return sb.String()
}

func rgb(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
}
