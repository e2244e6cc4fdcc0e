package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("storage: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, rec SessionRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO sessions (id, seed, started_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seed = excluded.seed,
			started_at = excluded.started_at
	`, rec.ID, rec.Seed, rec.StartedAt.UnixNano())
	return err
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, seed, started_at FROM sessions ORDER BY started_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var started int64
		if err := rows.Scan(&rec.ID, &rec.Seed, &started); err != nil {
			return nil, err
		}
		rec.StartedAt = fromNanos(started)
		out = append(out, rec)
	}
	return out, rows.Err()
}

type generationPayload struct {
	Codes   []string           `json:"codes"`
	Ratings []string           `json:"ratings"`
	Stats   map[string]float64 `json:"stats"`
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, rec GenerationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(generationPayload{Codes: rec.Codes, Ratings: rec.Ratings, Stats: rec.Stats})
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (session_id, generation, payload, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, generation) DO UPDATE SET
			payload = excluded.payload,
			recorded_at = excluded.recorded_at
	`, rec.Session, rec.Generation, payload, rec.RecordedAt.UnixNano())
	return err
}

func (s *SQLiteStore) Generations(ctx context.Context, session string) ([]GenerationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT generation, payload, recorded_at FROM generations
		WHERE session_id = ? ORDER BY generation
	`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		var (
			payload  []byte
			recorded int64
			p        generationPayload
		)
		rec := GenerationRecord{Session: session}
		if err := rows.Scan(&rec.Generation, &payload, &recorded); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode generation %d of %s: %w", rec.Generation, session, err)
		}
		rec.Codes, rec.Ratings, rec.Stats = p.Codes, p.Ratings, p.Stats
		rec.RecordedAt = fromNanos(recorded)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveToLibrary(ctx context.Context, e LibraryEntry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO library (id, code, session_id, generation, rating, path, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			session_id = excluded.session_id,
			generation = excluded.generation,
			rating = excluded.rating,
			path = excluded.path,
			saved_at = excluded.saved_at
	`, e.ID, e.Code, e.Session, e.Generation, e.Rating, e.Path, e.SavedAt.UnixNano())
	return err
}

const libraryColumns = `id, code, session_id, generation, rating, path, saved_at`

func (s *SQLiteStore) Library(ctx context.Context) ([]LibraryEntry, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT `+libraryColumns+` FROM library ORDER BY saved_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LibraryEntry
	for rows.Next() {
		e, err := scanLibraryEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetLibraryEntry(ctx context.Context, id string) (LibraryEntry, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return LibraryEntry{}, false, err
	}
	e, err := scanLibraryEntry(db.QueryRowContext(ctx, `SELECT `+libraryColumns+` FROM library WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LibraryEntry{}, false, nil
		}
		return LibraryEntry{}, false, err
	}
	return e, true, nil
}

func scanLibraryEntry(row interface{ Scan(...any) error }) (LibraryEntry, error) {
	var e LibraryEntry
	var saved int64
	if err := row.Scan(&e.ID, &e.Code, &e.Session, &e.Generation, &e.Rating, &e.Path, &saved); err != nil {
		return LibraryEntry{}, err
	}
	e.SavedAt = fromNanos(saved)
	return e, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			session_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			payload BLOB NOT NULL,
			recorded_at INTEGER NOT NULL,
			PRIMARY KEY (session_id, generation)
		);
		CREATE TABLE IF NOT EXISTS library (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			session_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			rating TEXT NOT NULL,
			path TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		);
	`)
	return err
}
