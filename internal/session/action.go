package session

import (
	"fmt"

	"github.com/san-kum/plasmagen/internal/evolve"
)

type ActionKind int

const (
	ActionRate ActionKind = iota
	ActionAdvance
	ActionExport
	ActionAbort
)

func (k ActionKind) String() string {
	switch k {
	case ActionRate:
		return "rate"
	case ActionAdvance:
		return "advance"
	case ActionExport:
		return "export"
	case ActionAbort:
		return "abort"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is one user intent delivered by an Input.
type Action struct {
	Kind   ActionKind
	Index  int
	Rating evolve.Rating
}

func Rate(index int, r evolve.Rating) Action {
	return Action{Kind: ActionRate, Index: index, Rating: r}
}

func Advance() Action { return Action{Kind: ActionAdvance} }

func Export(index int) Action { return Action{Kind: ActionExport, Index: index} }

func Abort() Action { return Action{Kind: ActionAbort} }
