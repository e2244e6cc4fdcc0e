package tui

import (
	"context"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/plasmagen/internal/evolve"
	"github.com/san-kum/plasmagen/internal/plasma"
	"github.com/san-kum/plasmagen/internal/render"
	"github.com/san-kum/plasmagen/internal/session"
)

func testFrame(w, h int) *image.Paletted {
	pal := color.Palette{color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}}
	img := image.NewPaletted(image.Rect(0, 0, w, h), pal)
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 2)
	}
	return img
}

func testGeneration(n int) session.Generation {
	gen := session.Generation{Number: 3}
	for range n {
		gen.Previews = append(gen.Previews, &render.Animation{
			Width:  4,
			Height: 4,
			Frames: []*image.Paletted{testFrame(4, 4), testFrame(4, 4)},
		})
		gen.IDs = append(gen.IDs, "0123456789abcdef0123456789abcdef0123")
	}
	gen.Genomes = make([]plasma.Genome, n)
	return gen
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds a key and runs the resulting command, collecting any action.
func press(t *testing.T, m model, ch chan session.Action, k string) (model, *session.Action) {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(model)
	if cmd == nil {
		return m, nil
	}
	cmd()
	select {
	case a := <-ch:
		return m, &a
	default:
		return m, nil
	}
}

func TestModelRatesSelectedGenome(t *testing.T) {
	ch := make(chan session.Action, 4)
	var m tea.Model = newModel(ch, 10)
	m, _ = m.Update(generationMsg(testGeneration(3)))

	mm, act := press(t, m.(model), ch, "f")
	if act == nil || *act != session.Rate(0, evolve.Favorite) {
		t.Fatalf("expected favorite for 0, got %+v", act)
	}
	mm, _ = press(t, mm, ch, "right")
	mm, act = press(t, mm, ch, "k")
	if act == nil || *act != session.Rate(1, evolve.Keep) {
		t.Fatalf("expected keep for 1, got %+v", act)
	}
	if mm.ratings[0] != evolve.Favorite || mm.ratings[1] != evolve.Keep {
		t.Errorf("ratings not tracked: %v", mm.ratings)
	}
}

func TestModelAdvanceWaitsForNextGeneration(t *testing.T) {
	ch := make(chan session.Action, 4)
	var m tea.Model = newModel(ch, 10)
	m, _ = m.Update(generationMsg(testGeneration(2)))

	mm, act := press(t, m.(model), ch, "enter")
	if act == nil || act.Kind != session.ActionAdvance {
		t.Fatalf("expected advance, got %+v", act)
	}
	if mm.state != stateWaiting {
		t.Errorf("expected waiting state, got %v", mm.state)
	}
	if _, act := press(t, mm, ch, "f"); act != nil {
		t.Errorf("ratings should be ignored while waiting, got %+v", act)
	}

	m2, _ := mm.Update(generationMsg(testGeneration(2)))
	if m2.(model).state != stateRating {
		t.Error("new generation should re-enable rating")
	}
	for _, r := range m2.(model).ratings {
		if r != evolve.Unrated {
			t.Errorf("ratings should reset, got %v", r)
		}
	}
}

func TestModelExportUsesCursor(t *testing.T) {
	ch := make(chan session.Action, 4)
	var m tea.Model = newModel(ch, 10)
	m, _ = m.Update(generationMsg(testGeneration(3)))
	mm, _ := press(t, m.(model), ch, "right")
	mm, _ = press(t, mm, ch, "right")
	mm, _ = press(t, mm, ch, "right")
	if mm.cursor != 2 {
		t.Fatalf("cursor should stop at last genome, got %d", mm.cursor)
	}
	_, act := press(t, mm, ch, "e")
	if act == nil || *act != session.Export(2) {
		t.Errorf("expected export of 2, got %+v", act)
	}
}

func TestModelView(t *testing.T) {
	ch := make(chan session.Action, 1)
	var m tea.Model = newModel(ch, 10)
	m, _ = m.Update(generationMsg(testGeneration(2)))
	out := m.View()
	if !strings.Contains(out, "generation 3") {
		t.Error("view should show the generation number")
	}
	if !strings.Contains(out, upperHalf) {
		t.Error("view should contain thumbnails")
	}
}

func TestThumbnail(t *testing.T) {
	out := Thumbnail(testFrame(5, 3))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines for 3 pixel rows, got %d", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, upperHalf); n != 5 {
			t.Errorf("line %d: expected 5 cells, got %d", i, n)
		}
	}
	if !strings.Contains(lines[0], "\x1b[38;2;255;0;0m") {
		t.Error("expected red foreground for the first pixel")
	}
}

func TestBridgeNextAfterClose(t *testing.T) {
	b := New(10)
	b.actions <- session.Advance()
	a, err := b.Next(context.Background())
	if err != nil || a.Kind != session.ActionAdvance {
		t.Fatalf("expected queued advance, got %+v, %v", a, err)
	}
	b.close()
	if _, err := b.Next(context.Background()); err != io.EOF {
		t.Errorf("expected io.EOF after close, got %v", err)
	}
	if err := b.Show(context.Background(), session.Generation{}); err != io.EOF {
		t.Errorf("expected io.EOF from Show after close, got %v", err)
	}
}

type discardExporter struct{}

func (discardExporter) Export(context.Context, *render.Animation, string) (string, error) {
	return "", nil
}

func TestClosedBridgeEndsSessionAsAborted(t *testing.T) {
	params := evolve.DefaultParams()
	params.MinTerms, params.MaxTerms = 2, 3
	params.TemporalMax = 3
	params.FrameCap = 12
	engine, err := evolve.New(params)
	if err != nil {
		t.Fatal(err)
	}
	renderer := render.New(render.Options{FrameCap: 12, FramesPerStep: 1, PaletteSize: 8, Workers: 1})

	b := New(10)
	b.close()
	cfg := session.Config{
		Size:          3,
		Terms:         evolve.TermRange{Min: 2, Max: 3},
		PreviewWidth:  4,
		PreviewHeight: 4,
		ExportWidth:   4,
		ExportHeight:  4,
		Seed:          3,
	}
	s, err := session.New(cfg, engine, renderer, b, b, discardExporter{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("quitting the UI should not be an error, got %v", err)
	}
	if !res.Aborted {
		t.Error("expected the session to be marked aborted")
	}
}
