// Package evolve breeds populations of plasma genomes from user ratings.
//
// The engine is pure: every random choice is drawn from the *rand.Rand passed
// in, so the same seed, population and ratings always produce the same next
// generation.
package evolve

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/plasmagen/internal/plasma"
)

// TermRange bounds the number of wave terms in seeded genomes.
type TermRange struct {
	Min int
	Max int
}

type Engine struct {
	params Params
}

func New(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: p}, nil
}

func (e *Engine) Params() Params { return e.params }

// Limits are the bounds every seeded or spawned genome satisfies.
func (e *Engine) Limits() plasma.Limits {
	return plasma.Limits{
		MinTerms: e.params.MinTerms,
		MaxTerms: e.params.MaxTerms,
		FrameCap: e.params.FrameCap,
	}
}

// Seed creates generation zero. Every genome has between terms.Min and terms.Max
// wave terms and a loop length within the frame cap.
func (e *Engine) Seed(size int, terms TermRange, rng *rand.Rand) (Population, error) {
	if size < 1 {
		return Population{}, fmt.Errorf("%w: population size %d", ErrInvalidParams, size)
	}
	if terms.Min < 1 || terms.Min > terms.Max {
		return Population{}, fmt.Errorf("%w: term range [%d, %d]", ErrInvalidParams, terms.Min, terms.Max)
	}
	pop := Population{Genomes: make([]plasma.Genome, size)}
	for i := range pop.Genomes {
		pop.Genomes[i] = e.randomGenome(rng, terms.Min, terms.Max)
	}
	return pop, nil
}

// Spawn returns a fresh random genome within the engine's limits. The session
// uses it to replace bred genomes the renderer rejects.
func (e *Engine) Spawn(rng *rand.Rand) plasma.Genome {
	return e.randomGenome(rng, e.params.MinTerms, e.params.MaxTerms)
}

// Advance breeds the next generation from ratings, which must be index-aligned
// with pop. The result has the same size and Generation+1.
//
// Favorites survive unchanged in the first slots, followed by keeps until
// Elitism survivors exist. The rest are offspring of parents drawn with weight
// favorite > keep; discarded and unrated genomes never parent unless nobody
// was rated favourably, in which case all genomes parent uniformly.
func (e *Engine) Advance(pop Population, ratings []Rating, rng *rand.Rand) (Population, error) {
	size := len(pop.Genomes)
	if size == 0 {
		return Population{}, ErrEmptyPopulation
	}
	if len(ratings) != size {
		return Population{}, fmt.Errorf("%w: %d ratings for %d genomes", ErrRatingsMismatch, len(ratings), size)
	}

	sel := newSelection(ratings, e.params)
	next := Population{Generation: pop.Generation + 1, Genomes: make([]plasma.Genome, 0, size)}
	for _, i := range sel.survivors(size, e.params.Elitism) {
		next.Genomes = append(next.Genomes, pop.Genomes[i].Clone())
	}
	for len(next.Genomes) < size {
		next.Genomes = append(next.Genomes, e.offspring(pop, sel, rng))
	}
	return next, nil
}

func (e *Engine) offspring(pop Population, sel *selection, rng *rand.Rand) plasma.Genome {
	ai := sel.pick(rng, -1)
	a := pop.Genomes[ai]

	var b plasma.Genome
	switch {
	case len(sel.parents) > 1:
		b = pop.Genomes[sel.pick(rng, ai)]
	case len(sel.unrated) > 0:
		b = pop.Genomes[sel.unrated[rng.Intn(len(sel.unrated))]]
	default:
		b = e.Spawn(rng)
	}

	child := a.Clone()
	if rng.Float64() < e.params.CrossoverRate {
		child = e.crossover(a, b, rng)
	}
	e.mutate(&child, rng)
	e.fitTerms(&child, a, b, rng)
	return child
}
