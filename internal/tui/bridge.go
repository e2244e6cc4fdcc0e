// Package tui is the terminal front end of an evolution session: it shows each
// generation as animated thumbnails and turns key presses into session actions.
package tui

import (
	"context"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/plasmagen/internal/session"
)

// Bridge connects a bubbletea program to a session. It implements both
// session.Display and session.Input.
type Bridge struct {
	program *tea.Program
	actions chan session.Action
	done    chan struct{}
	once    sync.Once
}

func New(fps float64, opts ...tea.ProgramOption) *Bridge {
	b := &Bridge{
		actions: make(chan session.Action, 16),
		done:    make(chan struct{}),
	}
	b.program = tea.NewProgram(newModel(b.actions, fps), opts...)
	return b
}

// Run blocks until the program exits. The session should run on another
// goroutine.
func (b *Bridge) Run() error {
	defer b.close()
	_, err := b.program.Run()
	return err
}

func (b *Bridge) Show(ctx context.Context, gen session.Generation) error {
	select {
	case <-b.done:
		return io.EOF
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	b.program.Send(generationMsg(gen))
	return nil
}

func (b *Bridge) Next(ctx context.Context) (session.Action, error) {
	select {
	case a := <-b.actions:
		return a, nil
	case <-b.done:
		return session.Action{}, io.EOF
	case <-ctx.Done():
		return session.Action{}, ctx.Err()
	}
}

// Finish shows text and exits the program.
func (b *Bridge) Finish(text string) {
	b.program.Send(finishedMsg{text: text})
}

func (b *Bridge) close() {
	b.once.Do(func() { close(b.done) })
}
