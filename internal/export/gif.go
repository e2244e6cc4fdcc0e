// Package export writes rendered loops as animated GIFs to local files or S3.
package export

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"io"

	"github.com/san-kum/plasmagen/internal/render"
)

var ErrEmptyAnimation = errors.New("export: animation has no frames")

// EncodeGIF writes a as an infinitely looping GIF using the animation's fixed
// palette and per-frame delay.
func EncodeGIF(w io.Writer, a *render.Animation) error {
	if a == nil || len(a.Frames) == 0 {
		return ErrEmptyAnimation
	}
	anim := gif.GIF{
		LoopCount: 0,
		Config: image.Config{
			ColorModel: a.Palette,
			Width:      a.Width,
			Height:     a.Height,
		},
	}
	for _, frame := range a.Frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, a.Delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}
	return gif.EncodeAll(w, &anim)
}

func gifBytes(a *render.Animation) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeGIF(&buf, a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
