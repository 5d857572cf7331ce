package harness

import (
	"github.com/roach88/reorder/internal/ir"
)

func testSpecs() []ir.EntitySpec {
	return []ir.EntitySpec{
		{
			Name:  "Course",
			Table: "courses",
			Fields: []ir.FieldSpec{
				{Name: "category_id", Type: ir.FieldInt},
				{Name: "title", Type: ir.FieldString},
			},
			Scope: []string{"category_id"},
		},
		{
			Name:   "Book",
			Table:  "books",
			Fields: []ir.FieldSpec{{Name: "title", Type: ir.FieldString}},
		},
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func createStep(entity, alias string, category any) Step {
	return Step{Create: entity, As: alias, Fields: map[string]any{"category_id": category}}
}

func moveStep(alias string, rank int, expect *ExpectClause) Step {
	return Step{Move: alias, Rank: intPtr(rank), Expect: expect}
}
