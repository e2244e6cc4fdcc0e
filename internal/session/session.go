// Package session drives one interactive evolution: seed, render previews,
// collect ratings, advance, and export.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"

	"github.com/google/uuid"
	"github.com/san-kum/plasmagen/internal/config"
	"github.com/san-kum/plasmagen/internal/evolve"
	"github.com/san-kum/plasmagen/internal/logging"
	"github.com/san-kum/plasmagen/internal/plasma"
	"github.com/san-kum/plasmagen/internal/render"
	"github.com/san-kum/plasmagen/internal/storage"
	"go.uber.org/zap"
)

// DefaultMaxReplacements bounds how many fresh genomes may be spawned for a
// single rejected slot.
const DefaultMaxReplacements = 64

// ErrNoValidGenome means replacement spawning kept producing genomes the
// renderer rejects.
var ErrNoValidGenome = errors.New("session: could not produce a renderable genome")

type Config struct {
	Size          int
	Terms         evolve.TermRange
	PreviewWidth  int
	PreviewHeight int
	ExportWidth   int
	ExportHeight  int
	Seed          int64
	// ContinueAfterExport keeps the session running after an export instead of
	// ending it.
	ContinueAfterExport bool
	MaxReplacements     int
}

func (c Config) validate() error {
	switch {
	case c.Size < 1:
		return &config.ConfigError{Field: "population.size", Reason: fmt.Sprintf("%d must be at least 1", c.Size)}
	case c.Terms.Min < 1 || c.Terms.Min > c.Terms.Max:
		return &config.ConfigError{Field: "population.min_terms", Reason: fmt.Sprintf("term range [%d, %d]", c.Terms.Min, c.Terms.Max)}
	case c.PreviewWidth < 1 || c.PreviewHeight < 1:
		return &config.ConfigError{Field: "render.preview_width", Reason: "preview size must be positive"}
	case c.ExportWidth < 1 || c.ExportHeight < 1:
		return &config.ConfigError{Field: "render.width", Reason: "export size must be positive"}
	}
	return nil
}

// Exported describes one genome handed to the Exporter.
type Exported struct {
	Generation int
	Index      int
	Genome     plasma.Genome
	Code       string
	Location   string
}

type Result struct {
	Session string
	// Final is the population shown last.
	Final       evolve.Population
	Generations int
	Exported    []Exported
	Aborted     bool
}

type Option func(*Session)

func WithStore(st storage.Store) Option {
	return func(s *Session) { s.store = st }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session owns the current population. It is not safe for concurrent use;
// independent sessions may run side by side.
type Session struct {
	id       string
	cfg      Config
	engine   *evolve.Engine
	renderer *render.Renderer
	display  Display
	input    Input
	exporter Exporter
	store    storage.Store
	log      *zap.Logger
	rng      *rand.Rand
}

func New(cfg Config, engine *evolve.Engine, renderer *render.Renderer, display Display, input Input, exporter Exporter, opts ...Option) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if engine == nil || renderer == nil || display == nil || input == nil || exporter == nil {
		return nil, errors.New("session: engine, renderer, display, input and exporter are required")
	}
	if cfg.MaxReplacements <= 0 {
		cfg.MaxReplacements = DefaultMaxReplacements
	}
	s := &Session{
		cfg:      cfg,
		engine:   engine,
		renderer: renderer,
		display:  display,
		input:    input,
		exporter: exporter,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.log = logging.OrNop(s.log).With(zap.String("session", s.id))
	return s, nil
}

func (s *Session) ID() string { return s.id }

// Run blocks until the user exports (unless ContinueAfterExport), aborts, the
// input is exhausted or ctx is cancelled. io.EOF from either the display or the
// input counts as an abort.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	s.saveSession(ctx)
	s.log.Info("session started", zap.Int64("seed", s.cfg.Seed), zap.Int("size", s.cfg.Size))

	pop, err := s.engine.Seed(s.cfg.Size, s.cfg.Terms, s.rng)
	if err != nil {
		return nil, err
	}

	res := &Result{Session: s.id}
	for {
		gen, err := s.prepare(ctx, &pop)
		if err != nil {
			return res, err
		}
		res.Final = pop
		res.Generations++
		if err := s.display.Show(ctx, gen); err != nil {
			if errors.Is(err, io.EOF) {
				res.Aborted = true
				s.log.Info("display closed", zap.Int("generation", pop.Generation))
				return res, nil
			}
			return res, fmt.Errorf("session: display generation %d: %w", pop.Generation, err)
		}

		ratings := pop.Unrated()
		done, err := s.collect(ctx, pop, ratings, res)
		discardUnrated(ratings)
		s.recordGeneration(ctx, pop, ratings)
		if err != nil || done {
			return res, err
		}

		next, err := s.engine.Advance(pop, ratings, s.rng)
		if err != nil {
			return res, err
		}
		s.log.Debug("advanced", zap.Int("generation", next.Generation))
		pop = next
	}
}

// collect applies actions until the user advances (false) or the session ends
// (true).
func (s *Session) collect(ctx context.Context, pop evolve.Population, ratings []evolve.Rating, res *Result) (bool, error) {
	for {
		act, err := s.input.Next(ctx)
		if errors.Is(err, io.EOF) {
			res.Aborted = true
			return true, nil
		}
		if err != nil {
			return true, err
		}

		switch act.Kind {
		case ActionRate:
			if !s.inRange(act, pop) {
				continue
			}
			ratings[act.Index] = act.Rating
		case ActionAdvance:
			return false, nil
		case ActionExport:
			if !s.inRange(act, pop) {
				continue
			}
			ex, err := s.export(ctx, pop, act.Index, ratings[act.Index])
			if err != nil {
				return true, err
			}
			res.Exported = append(res.Exported, ex)
			if !s.cfg.ContinueAfterExport {
				return true, nil
			}
		case ActionAbort:
			res.Aborted = true
			return true, nil
		default:
			s.log.Warn("ignoring unknown action", zap.Stringer("kind", act.Kind))
		}
	}
}

func (s *Session) inRange(act Action, pop evolve.Population) bool {
	if act.Index >= 0 && act.Index < pop.Len() {
		return true
	}
	s.log.Warn("ignoring action for missing genome", zap.Stringer("kind", act.Kind), zap.Int("index", act.Index))
	return false
}

// prepare swaps every genome the renderer would reject for a fresh one, then
// renders all previews. Replacement happens serially so it consumes the random
// source in a fixed order.
func (s *Session) prepare(ctx context.Context, pop *evolve.Population) (Generation, error) {
	genomes := slices.Clone(pop.Genomes)
	pop.Genomes = genomes
	replaced := 0
	for i := range genomes {
		tries := 0
		for s.check(genomes[i]) != nil {
			if tries == s.cfg.MaxReplacements {
				return Generation{}, fmt.Errorf("%w: slot %d after %d attempts", ErrNoValidGenome, i, tries)
			}
			genomes[i] = s.engine.Spawn(s.rng)
			tries++
		}
		if tries > 0 {
			s.log.Debug("replaced invalid genome", zap.Int("generation", pop.Generation), zap.Int("index", i), zap.Int("attempts", tries))
		}
		replaced += tries
	}

	previews, err := s.renderer.RenderPopulation(ctx, genomes, s.cfg.PreviewWidth, s.cfg.PreviewHeight)
	if err != nil {
		return Generation{}, err
	}

	ids := make([]string, len(genomes))
	for i, g := range genomes {
		ids[i] = plasma.Fingerprint(g).String()
	}
	return Generation{
		Session:  s.id,
		Number:   pop.Generation,
		Genomes:  genomes,
		IDs:      ids,
		Previews: previews,
		Replaced: replaced,
	}, nil
}

func (s *Session) check(g plasma.Genome) error {
	if err := g.Validate(s.engine.Limits()); err != nil {
		return err
	}
	return s.renderer.Validate(g)
}

func discardUnrated(ratings []evolve.Rating) {
	for i, r := range ratings {
		if r == evolve.Unrated {
			ratings[i] = evolve.Discard
		}
	}
}
