package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/queryir"
	"github.com/roach88/reorder/internal/store"
)

// ScopeQuery is the ordered view of one scope: every row of the entity table
// with a non-NULL sequence whose scope fields equal Values. NULL scope values
// match NULL. Iteration order is sequence ASC, id ASC.
type ScopeQuery struct {
	Spec   ir.EntitySpec
	Values ir.IRObject
}

// scopeOf returns the scope containing row.
func scopeOf(spec ir.EntitySpec, row *ir.Row) ScopeQuery {
	return ScopeQuery{Spec: spec, Values: row.ScopeValues(spec.Scope)}
}

// ScopeFor builds a scope from explicit values. Every scope field must be
// present (use ir.IRNull for the NULL group) and no other keys are allowed.
func ScopeFor(spec ir.EntitySpec, values ir.IRObject) (ScopeQuery, error) {
	for name := range values {
		if !slices.Contains(spec.Scope, name) {
			return ScopeQuery{}, fmt.Errorf("%s: %q is not a scope field", spec.Name, name)
		}
	}

	normalized := make(ir.IRObject, len(spec.Scope))
	for _, name := range spec.Scope {
		v, ok := values[name]
		if !ok {
			return ScopeQuery{}, fmt.Errorf("%s: missing scope field %q", spec.Name, name)
		}
		if v == nil {
			v = ir.IRNull{}
		}
		field, _ := spec.Field(name)
		if err := field.CheckValue(v); err != nil {
			return ScopeQuery{}, fmt.Errorf("%s: %w", spec.Name, err)
		}
		normalized[name] = ir.Normalize(v)
	}
	return ScopeQuery{Spec: spec, Values: normalized}, nil
}

// Filter returns the predicate selecting the scope's ordered rows.
// Scope fields come first, in declaration order, to match the index.
func (q ScopeQuery) Filter() queryir.Predicate {
	preds := make([]queryir.Predicate, 0, len(q.Spec.Scope)+1)
	for _, name := range q.Spec.Scope {
		v, ok := q.Values[name]
		if !ok {
			v = ir.IRNull{}
		}
		preds = append(preds, queryir.Equals{Field: name, Value: v})
	}
	preds = append(preds, queryir.NotNull{Field: ir.ColumnSequence})
	return queryir.And{Predicates: preds}
}

// Hash identifies the scope in logs and the move journal.
func (q ScopeQuery) Hash() (string, error) {
	return ir.ScopeHash(q.Spec.Name, q.Values)
}

// Count returns the number of ordered rows in the scope.
func (q ScopeQuery) Count(ctx context.Context, tx *store.Tx) (int, error) {
	return tx.Count(ctx, queryir.Count{From: q.Spec.Table, Filter: q.Filter()})
}

// Rank returns the 1-based position of (key, id) within the scope: one plus
// the number of rows ordered before it.
func (q ScopeQuery) Rank(ctx context.Context, tx *store.Tx, key float64, id int64) (int, error) {
	n, err := tx.Count(ctx, queryir.Count{
		From: q.Spec.Table,
		Filter: queryir.And{Predicates: []queryir.Predicate{
			q.Filter(),
			queryir.Precedes{Key: key, ID: id},
		}},
	})
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// Slice returns up to limit rows starting at 0-based offset.
// limit 0 means no limit.
func (q ScopeQuery) Slice(ctx context.Context, tx *store.Tx, offset, limit int) ([]ir.Row, error) {
	return tx.Select(ctx, q.Spec, queryir.Select{
		Filter:  q.Filter(),
		OrderBy: []queryir.OrderTerm{{Field: ir.ColumnSequence}},
		Limit:   limit,
		Offset:  offset,
	})
}

// All returns every ordered row in the scope.
func (q ScopeQuery) All(ctx context.Context, tx *store.Tx) ([]ir.Row, error) {
	return q.Slice(ctx, tx, 0, 0)
}

// First returns the lowest-ordered row, and false for an empty scope.
func (q ScopeQuery) First(ctx context.Context, tx *store.Tx) (ir.Row, bool, error) {
	rows, err := q.Slice(ctx, tx, 0, 1)
	if err != nil || len(rows) == 0 {
		return ir.Row{}, false, err
	}
	return rows[0], true, nil
}

// MaxKey returns the largest key in the scope, and false for an empty scope.
func (q ScopeQuery) MaxKey(ctx context.Context, tx *store.Tx) (float64, bool, error) {
	return tx.Max(ctx, queryir.Max{
		From:   q.Spec.Table,
		Column: ir.ColumnSequence,
		Filter: q.Filter(),
	})
}
