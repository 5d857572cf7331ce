package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/store"
	"github.com/roach88/reorder/internal/testutil"
)

func courseSpec() ir.EntitySpec {
	return ir.EntitySpec{
		Name:  "Course",
		Table: "courses",
		Fields: []ir.FieldSpec{
			{Name: "category_id", Type: ir.FieldInt},
			{Name: "title", Type: ir.FieldString},
		},
		Scope: []string{"category_id"},
	}
}

func bookSpec() ir.EntitySpec {
	return ir.EntitySpec{
		Name:   "Book",
		Table:  "books",
		Fields: []ir.FieldSpec{{Name: "title", Type: ir.FieldString}},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEngine opens an in-memory store with Course and Book registered.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *store.Store) {
	t.Helper()
	s := testutil.OpenMemoryStore(t)
	opts = append([]Option{
		WithLogger(quietLogger()),
		WithTokenGenerator(testutil.NewSequentialTokenGenerator("move")),
	}, opts...)

	e, err := New(context.Background(), s, []ir.EntitySpec{courseSpec(), bookSpec()}, opts...)
	require.NoError(t, err)
	return e, s
}

// createCourse creates a course in category with an optional explicit key.
func createCourse(t *testing.T, e *Engine, category int64, key *float64) *ir.Row {
	t.Helper()
	row := &ir.Row{
		Entity:   "Course",
		Sequence: key,
		Fields:   ir.IRObject{"category_id": ir.IRInt(category)},
	}
	require.NoError(t, e.Create(context.Background(), row))
	return row
}

// seedCourses creates one course per key in category, in order.
func seedCourses(t *testing.T, e *Engine, category int64, keys ...float64) []*ir.Row {
	t.Helper()
	rows := make([]*ir.Row, len(keys))
	for i, k := range keys {
		rows[i] = createCourse(t, e, category, ir.Key(k))
	}
	return rows
}

func category(id int64) ir.IRObject {
	return ir.IRObject{"category_id": ir.IRInt(id)}
}

// listKeys returns the ascending keys of one course category.
func listKeys(t *testing.T, e *Engine, cat int64) []float64 {
	t.Helper()
	rows, err := e.List(context.Background(), "Course", category(cat))
	require.NoError(t, err)
	keys := make([]float64, len(rows))
	for i, r := range rows {
		keys[i] = *r.Sequence
	}
	return keys
}

// listIDs returns the ids of one course category in ascending order.
func listIDs(t *testing.T, e *Engine, cat int64) []int64 {
	t.Helper()
	rows, err := e.List(context.Background(), "Course", category(cat))
	require.NoError(t, err)
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func idsOf(rows ...*ir.Row) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}
