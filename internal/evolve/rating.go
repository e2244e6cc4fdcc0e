package evolve

import (
	"fmt"
	"strings"
)

// Rating is the user's verdict on one member of a population.
type Rating int

const (
	Unrated Rating = iota
	Discard
	Keep
	Favorite
)

func (r Rating) String() string {
	switch r {
	case Unrated:
		return "unrated"
	case Discard:
		return "discard"
	case Keep:
		return "keep"
	case Favorite:
		return "favorite"
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// Favorable reports whether the rating makes a genome eligible as a parent.
func (r Rating) Favorable() bool {
	return r == Keep || r == Favorite
}

func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "u", "unrated":
		return Unrated, nil
	case "d", "discard":
		return Discard, nil
	case "k", "keep":
		return Keep, nil
	case "f", "fav", "favorite", "favourite":
		return Favorite, nil
	}
	return Unrated, fmt.Errorf("%w: %q", ErrUnknownRating, s)
}
