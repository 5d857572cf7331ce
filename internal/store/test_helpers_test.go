package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/reorder/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// courseSpec is a scoped entity used across store tests.
func courseSpec() ir.EntitySpec {
	return ir.EntitySpec{
		Name:  "Course",
		Table: "courses",
		Fields: []ir.FieldSpec{
			{Name: "category_id", Type: ir.FieldInt},
			{Name: "title", Type: ir.FieldString},
			{Name: "published", Type: ir.FieldBool},
		},
		Scope: []string{"category_id"},
	}
}

// createCourseStore opens a store with the course table registered.
func createCourseStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	if err := s.EnsureEntity(context.Background(), courseSpec()); err != nil {
		t.Fatalf("EnsureEntity() failed: %v", err)
	}
	return s
}

// insertCourse inserts a course with an explicit key and returns its id.
func insertCourse(t *testing.T, s *Store, category int64, title string, key *float64) int64 {
	t.Helper()
	row := &ir.Row{
		Sequence: key,
		Fields: ir.IRObject{
			"category_id": ir.IRInt(category),
			"title":       ir.IRString(title),
		},
	}
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		return tx.Insert(context.Background(), courseSpec(), row)
	})
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	return row.ID
}
