package session

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/plasmagen/internal/analysis"
	"github.com/san-kum/plasmagen/internal/evolve"
	"github.com/san-kum/plasmagen/internal/plasma"
	"github.com/san-kum/plasmagen/internal/storage"
	"go.uber.org/zap"
)

// export renders the selected genome at full resolution and hands it to the
// exporter. Exported genomes are added to the library when a store is set.
func (s *Session) export(ctx context.Context, pop evolve.Population, index int, rating evolve.Rating) (Exported, error) {
	g := pop.Genomes[index]
	anim, err := s.renderer.Animate(ctx, g, s.cfg.ExportWidth, s.cfg.ExportHeight)
	if err != nil {
		return Exported{}, fmt.Errorf("session: render export: %w", err)
	}
	code, err := plasma.Encode(g)
	if err != nil {
		return Exported{}, err
	}
	id := plasma.Fingerprint(g)
	name := fmt.Sprintf("plasma-g%03d-%s", pop.Generation, id.String()[:8])
	loc, err := s.exporter.Export(ctx, anim, name)
	if err != nil {
		return Exported{}, fmt.Errorf("session: export: %w", err)
	}
	s.log.Info("exported genome",
		zap.Int("generation", pop.Generation),
		zap.Int("index", index),
		zap.Int("frames", len(anim.Frames)),
		zap.String("location", loc),
	)

	if s.store != nil {
		entry := storage.LibraryEntry{
			ID:         id.String(),
			Code:       code,
			Session:    s.id,
			Generation: pop.Generation,
			Rating:     rating.String(),
			Path:       loc,
			SavedAt:    time.Now().UTC(),
		}
		if err := s.store.SaveToLibrary(ctx, entry); err != nil {
			s.log.Warn("library save failed", zap.Error(err))
		}
	}
	return Exported{Generation: pop.Generation, Index: index, Genome: g.Clone(), Code: code, Location: loc}, nil
}

func (s *Session) saveSession(ctx context.Context) {
	if s.store == nil {
		return
	}
	rec := storage.SessionRecord{ID: s.id, Seed: s.cfg.Seed, StartedAt: time.Now().UTC()}
	if err := s.store.SaveSession(ctx, rec); err != nil {
		s.log.Warn("session save failed", zap.Error(err))
	}
}

// recordGeneration stores the final ratings of a generation with population
// statistics. Storage failures are logged and never end the session.
func (s *Session) recordGeneration(ctx context.Context, pop evolve.Population, ratings []evolve.Rating) {
	if s.store == nil {
		return
	}
	rec := storage.GenerationRecord{
		Session:    s.id,
		Generation: pop.Generation,
		Codes:      make([]string, 0, pop.Len()),
		Ratings:    make([]string, len(ratings)),
		Stats:      analysis.Summarize(pop.Genomes).Map(),
		RecordedAt: time.Now().UTC(),
	}
	for _, g := range pop.Genomes {
		code, err := plasma.Encode(g)
		if err != nil {
			s.log.Warn("encode genome failed", zap.Error(err))
			return
		}
		rec.Codes = append(rec.Codes, code)
	}
	for i, r := range ratings {
		rec.Ratings[i] = r.String()
		switch r {
		case evolve.Favorite:
			rec.Stats["favorites"]++
		case evolve.Keep:
			rec.Stats["keeps"]++
		case evolve.Discard:
			rec.Stats["discards"]++
		}
	}
	if err := s.store.SaveGeneration(ctx, rec); err != nil {
		s.log.Warn("generation save failed", zap.Error(err))
	}
}
