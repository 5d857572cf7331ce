package testutil

import (
	"path/filepath"
	"testing"

	"github.com/roach88/reorder/internal/store"
)

// OpenMemoryStore opens an in-memory store closed at test cleanup.
func OpenMemoryStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// OpenFileStore opens a store in a fresh temp directory and returns it with
// its path, so a test can open a second handle on the same database.
func OpenFileStore(t testing.TB) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reorder.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("open store %s: %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}
