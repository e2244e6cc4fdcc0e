package evolve

import "errors"

var (
	ErrInvalidParams   = errors.New("evolve: invalid parameters")
	ErrRatingsMismatch = errors.New("evolve: ratings do not match population")
	ErrEmptyPopulation = errors.New("evolve: empty population")
	ErrUnknownRating   = errors.New("evolve: unknown rating")
)
