// Package viewer plays one rendered loop in a desktop window.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/san-kum/plasmagen/internal/render"
)

type player struct {
	anim   *render.Animation
	frames []*ebiten.Image
	title  string

	paused  bool
	elapsed time.Duration
	last    time.Time
	hud     bool
}

func (p *player) Update() error {
	now := time.Now()
	if !p.paused && !p.last.IsZero() {
		p.elapsed += now.Sub(p.last)
	}
	p.last = now

	step := time.Duration(max(p.anim.Delay, 1)) * 10 * time.Millisecond
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		p.paused = !p.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		p.paused = true
		p.elapsed += step
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		p.paused = true
		p.elapsed -= step
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		p.hud = !p.hud
	}
	return nil
}

func (p *player) Draw(screen *ebiten.Image) {
	if p.frames == nil {
		p.frames = make([]*ebiten.Image, len(p.anim.Frames))
		for i, f := range p.anim.Frames {
			p.frames[i] = ebiten.NewImageFromImage(f)
		}
	}
	i := p.anim.FrameAt(p.elapsed)
	screen.DrawImage(p.frames[i], nil)
	if p.hud {
		state := "playing"
		if p.paused {
			state = "paused"
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%s\nframe %d/%d  %s", p.title, i+1, len(p.frames), state))
	}
}

func (p *player) Layout(_, _ int) (int, int) {
	return p.anim.Width, p.anim.Height
}

// Play opens a window scaled by scale and loops a until the window is closed
// or Q/Esc is pressed. Space pauses, arrows step, H toggles the overlay.
func Play(a *render.Animation, title string, scale int) error {
	if a == nil || len(a.Frames) == 0 {
		return errors.New("viewer: nothing to play")
	}
	scale = max(scale, 1)
	ebiten.SetWindowSize(a.Width*scale, a.Height*scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	p := &player{anim: a, title: title, hud: true}
	if err := ebiten.RunGame(p); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
