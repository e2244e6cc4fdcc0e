package session

import (
	"context"

	"github.com/san-kum/plasmagen/internal/plasma"
	"github.com/san-kum/plasmagen/internal/render"
)

// Generation is what a Display presents: every member of the current
// population with its rendered preview loop.
type Generation struct {
	Session  string
	Number   int
	Genomes  []plasma.Genome
	IDs      []string
	Previews []*render.Animation
	// Replaced counts bred genomes swapped for fresh ones before rendering.
	Replaced int
}

// Display presents a generation. Show returns once the previews are handed
// over; it does not wait for ratings.
type Display interface {
	Show(ctx context.Context, gen Generation) error
}

// Input delivers user actions one at a time. It may block indefinitely.
// io.EOF ends the session as if the user aborted.
type Input interface {
	Next(ctx context.Context) (Action, error)
}

// Exporter receives full resolution loops and returns where they were stored.
type Exporter interface {
	Export(ctx context.Context, a *render.Animation, name string) (string, error)
}
