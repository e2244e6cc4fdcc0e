package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "plasmagen.db"))
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreSessions(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Init(ctx); err != nil {
				t.Fatalf("init failed: %v", err)
			}
			t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
			if err := st.SaveSession(ctx, SessionRecord{ID: "b", Seed: 2, StartedAt: t0.Add(time.Minute)}); err != nil {
				t.Fatal(err)
			}
			if err := st.SaveSession(ctx, SessionRecord{ID: "a", Seed: 1, StartedAt: t0}); err != nil {
				t.Fatal(err)
			}

			got, err := st.ListSessions(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
				t.Fatalf("expected sessions a, b in start order, got %+v", got)
			}
			if got[1].Seed != 2 || !got[0].StartedAt.Equal(t0) {
				t.Errorf("session fields not preserved: %+v", got)
			}
		})
	}
}

func TestStoreGenerations(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Init(ctx); err != nil {
				t.Fatalf("init failed: %v", err)
			}
			for _, g := range []int{1, 0} {
				rec := GenerationRecord{
					Session:    "s1",
					Generation: g,
					Codes:      []string{"x", "y"},
					Ratings:    []string{"favorite", "discard"},
					Stats:      map[string]float64{"favorites": 1},
					RecordedAt: time.Unix(int64(g), 0).UTC(),
				}
				if err := st.SaveGeneration(ctx, rec); err != nil {
					t.Fatalf("save generation %d: %v", g, err)
				}
			}

			got, err := st.Generations(ctx, "s1")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 generations, got %d", len(got))
			}
			if got[0].Generation != 0 || got[1].Generation != 1 {
				t.Errorf("generations out of order: %d, %d", got[0].Generation, got[1].Generation)
			}
			if got[1].Ratings[0] != "favorite" || got[1].Stats["favorites"] != 1 {
				t.Errorf("payload not preserved: %+v", got[1])
			}

			other, err := st.Generations(ctx, "missing")
			if err != nil {
				t.Fatal(err)
			}
			if len(other) != 0 {
				t.Errorf("expected no generations, got %d", len(other))
			}
		})
	}
}

func TestStoreLibraryUpsert(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Init(ctx); err != nil {
				t.Fatalf("init failed: %v", err)
			}
			e := LibraryEntry{ID: "g1", Code: "code", Session: "s1", Generation: 3, Rating: "keep", Path: "a.gif", SavedAt: time.Unix(10, 0).UTC()}
			if err := st.SaveToLibrary(ctx, e); err != nil {
				t.Fatal(err)
			}
			e.Path = "b.gif"
			if err := st.SaveToLibrary(ctx, e); err != nil {
				t.Fatal(err)
			}

			all, err := st.Library(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 1 {
				t.Fatalf("expected 1 entry after upsert, got %d", len(all))
			}
			got, ok, err := st.GetLibraryEntry(ctx, "g1")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if got.Path != "b.gif" || got.Generation != 3 {
				t.Errorf("unexpected entry %+v", got)
			}

			_, ok, err = st.GetLibraryEntry(ctx, "nope")
			if err != nil || ok {
				t.Errorf("expected missing entry, ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestStoreRequiresInit(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.Library(context.Background()); !errors.Is(err, ErrNotInitialized) {
				t.Errorf("expected ErrNotInitialized, got %v", err)
			}
		})
	}
}

func TestNewStore(t *testing.T) {
	if _, err := NewStore("memory", ""); err != nil {
		t.Errorf("memory: %v", err)
	}
	st, err := NewStore("sqlite", filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := st.(*SQLiteStore); !ok {
		t.Errorf("expected *SQLiteStore, got %T", st)
	}
	if _, err := NewStore("redis", ""); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
	if err := CloseIfSupported(st); err != nil {
		t.Errorf("close: %v", err)
	}
}
