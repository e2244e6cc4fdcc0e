// Package storage persists session history and the library of exported genomes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotInitialized = errors.New("storage: store is not initialized")
	ErrUnknownBackend = errors.New("storage: unsupported store backend")
)

// SessionRecord identifies one evolution session.
type SessionRecord struct {
	ID        string    `json:"id"`
	Seed      int64     `json:"seed"`
	StartedAt time.Time `json:"started_at"`
}

// GenerationRecord is the outcome of one rated generation.
type GenerationRecord struct {
	Session    string             `json:"session"`
	Generation int                `json:"generation"`
	Codes      []string           `json:"codes"`
	Ratings    []string           `json:"ratings"`
	Stats      map[string]float64 `json:"stats"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// LibraryEntry is a genome the user exported. ID is the genome fingerprint, so
// exporting the same genome twice updates one entry.
type LibraryEntry struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Session    string    `json:"session"`
	Generation int       `json:"generation"`
	Rating     string    `json:"rating"`
	Path       string    `json:"path"`
	SavedAt    time.Time `json:"saved_at"`
}

type Store interface {
	Init(ctx context.Context) error
	SaveSession(ctx context.Context, s SessionRecord) error
	ListSessions(ctx context.Context) ([]SessionRecord, error)
	SaveGeneration(ctx context.Context, rec GenerationRecord) error
	Generations(ctx context.Context, session string) ([]GenerationRecord, error)
	SaveToLibrary(ctx context.Context, e LibraryEntry) error
	Library(ctx context.Context) ([]LibraryEntry, error)
	GetLibraryEntry(ctx context.Context, id string) (LibraryEntry, bool, error)
}

// NewStore returns an uninitialised store of the given kind.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
