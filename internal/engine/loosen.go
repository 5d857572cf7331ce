package engine

import (
	"context"
	"slices"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/store"
)

// pin holds one row at a fixed 1-based rank while a scope is renormalized.
type pin struct {
	id   int64
	rank int
}

// loosen rewrites every key in scope as 1.0, 2.0, ... in ascending order and
// returns the rows with their new keys.
//
// With a pin, the pinned row is placed at its rank regardless of its stored
// key: a midpoint that collapsed onto a neighbor's key would otherwise leave
// the id tiebreaker to decide its place.
func loosen(ctx context.Context, tx *store.Tx, scope ScopeQuery, p *pin) ([]ir.Row, error) {
	rows, err := scope.All(ctx, tx)
	if err != nil {
		return nil, err
	}

	if p != nil {
		if i := slices.IndexFunc(rows, func(r ir.Row) bool { return r.ID == p.id }); i >= 0 {
			moved := rows[i]
			rows = slices.Delete(rows, i, i+1)
			at := min(max(p.rank-1, 0), len(rows))
			rows = slices.Insert(rows, at, moved)
		}
	}

	for i := range rows {
		key := float64(i + 1)
		if err := tx.UpdateSequence(ctx, scope.Spec, rows[i].ID, &key); err != nil {
			return nil, err
		}
		rows[i].SetSequence(key)
	}
	return rows, nil
}
