package engine

import (
	"context"
	"math"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/store"
)

// DefaultLoosenThreshold is the neighbor gap below which a reposition
// renormalizes its scope.
const DefaultLoosenThreshold = 1e-6

// Reposition moves item to the 1-based targetRank within its scope.
//
// The row is re-read inside the transaction, so item only needs a valid
// entity name and id. On success item's key is updated and the journal
// record is returned; a row already at targetRank commits nothing and
// returns a nil record.
//
// Errors (all SequenceError):
//   - INVALID_RANK: targetRank < 1 (checked before touching storage), or
//     a targetRank whose neighbor window is empty (past the last row)
//   - NOT_FOUND, NOT_SEQUENCED: the row is gone or has a NULL key
//   - CONCURRENCY_CONFLICT, STORAGE_ERROR: rolled back, keys unchanged
func (e *Engine) Reposition(ctx context.Context, item Sequenced, targetRank int) (*ir.MoveRecord, error) {
	if targetRank < 1 {
		return nil, NewInvalidRankError(item.EntityName(), item.RowID(), targetRank, "must be at least 1")
	}
	spec, err := e.spec(item.EntityName())
	if err != nil {
		return nil, err
	}

	var (
		rec       *ir.MoveRecord
		committed float64
	)
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		row, err := tx.Get(ctx, spec, item.RowID())
		if err != nil {
			return err
		}
		key, ok := row.SequenceKey()
		if !ok {
			return newNotSequencedError(spec.Name, row.ID)
		}
		committed = key

		scope := scopeOf(spec, &row)
		current, err := scope.Rank(ctx, tx, key, row.ID)
		if err != nil {
			return err
		}
		if current == targetRank {
			return nil
		}

		prev, next, err := window(ctx, tx, scope, row, current, targetRank)
		if err != nil {
			return err
		}

		newKey := (prev + next) / 2
		if err := tx.UpdateSequence(ctx, spec, row.ID, &newKey); err != nil {
			return err
		}
		committed = newKey

		loosened := math.Abs(next-prev) < e.loosenThreshold
		if loosened {
			rows, err := loosen(ctx, tx, scope, &pin{id: row.ID, rank: targetRank})
			if err != nil {
				return err
			}
			committed = float64(targetRank)
			for _, r := range rows {
				if r.ID == row.ID {
					committed = *r.Sequence
				}
			}
		}

		hash, err := scope.Hash()
		if err != nil {
			return err
		}
		rec = &ir.MoveRecord{
			Token:         e.tokens.Generate(),
			Entity:        spec.Name,
			RowID:         row.ID,
			ScopeHash:     hash,
			FromRank:      current,
			ToRank:        targetRank,
			PrevKey:       prev,
			NextKey:       next,
			NewKey:        committed,
			Loosened:      loosened,
			EngineVersion: ir.EngineVersion,
		}
		rec.ID, err = tx.WriteMove(ctx, *rec)
		return err
	})
	if err != nil {
		return nil, classify("reposition", spec.Name, item.RowID(), err)
	}

	item.SetSequence(committed)
	if rec != nil {
		e.logger.Info("row repositioned",
			"token", rec.Token,
			"entity", rec.Entity,
			"row_id", rec.RowID,
			"from", rec.FromRank,
			"to", rec.ToRank,
			"new_key", ir.FormatKey(rec.NewKey),
			"loosened", rec.Loosened,
			"scope_hash", rec.ScopeHash,
		)
	}
	return rec, nil
}

// window returns the keys the moved row must land between.
//
// The moving row is never part of the window: an earlier move reads ranks
// target-1 and target (both before current), a later move reads ranks
// target and target+1 (both after current).
func window(ctx context.Context, tx *store.Tx, scope ScopeQuery, row ir.Row, current, target int) (float64, float64, error) {
	if target == 1 {
		first, ok, err := scope.First(ctx, tx)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			return 0, 0, NewInvalidRankError(scope.Spec.Name, row.ID, target, "scope is empty")
		}
		return 0, *first.Sequence, nil
	}

	offset := target - 1
	if current > target {
		offset = target - 2
	}
	peers, err := scope.Slice(ctx, tx, offset, 2)
	if err != nil {
		return 0, 0, err
	}

	switch len(peers) {
	case 0:
		return 0, 0, NewInvalidRankError(scope.Spec.Name, row.ID, target, "beyond end of scope")
	case 1:
		prev := *peers[0].Sequence
		return prev, prev + 1, nil
	default:
		return *peers[0].Sequence, *peers[1].Sequence, nil
	}
}
