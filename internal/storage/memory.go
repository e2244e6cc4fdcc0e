package storage

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	sessions    map[string]SessionRecord
	generations map[string]map[int]GenerationRecord
	library     map[string]LibraryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.sessions = make(map[string]SessionRecord)
	s.generations = make(map[string]map[int]GenerationRecord)
	s.library = make(map[string]LibraryEntry)
	return nil
}

func (s *MemoryStore) SaveSession(_ context.Context, rec SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.sessions[rec.ID] = rec
	return nil
}

func (s *MemoryStore) ListSessions(_ context.Context) ([]SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	out := slices.Collect(maps.Values(s.sessions))
	slices.SortFunc(out, func(a, b SessionRecord) int {
		return cmp.Or(a.StartedAt.Compare(b.StartedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, rec GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	gens, ok := s.generations[rec.Session]
	if !ok {
		gens = make(map[int]GenerationRecord)
		s.generations[rec.Session] = gens
	}
	rec.Codes = slices.Clone(rec.Codes)
	rec.Ratings = slices.Clone(rec.Ratings)
	rec.Stats = maps.Clone(rec.Stats)
	gens[rec.Generation] = rec
	return nil
}

func (s *MemoryStore) Generations(_ context.Context, session string) ([]GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	out := slices.Collect(maps.Values(s.generations[session]))
	slices.SortFunc(out, func(a, b GenerationRecord) int {
		return cmp.Compare(a.Generation, b.Generation)
	})
	return out, nil
}

func (s *MemoryStore) SaveToLibrary(_ context.Context, e LibraryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.library[e.ID] = e
	return nil
}

func (s *MemoryStore) Library(_ context.Context) ([]LibraryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	out := slices.Collect(maps.Values(s.library))
	slices.SortFunc(out, func(a, b LibraryEntry) int {
		return cmp.Or(a.SavedAt.Compare(b.SavedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *MemoryStore) GetLibraryEntry(_ context.Context, id string) (LibraryEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return LibraryEntry{}, false, ErrNotInitialized
	}
	e, ok := s.library[id]
	return e, ok, nil
}
