package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/querysql"
)

// InsertHook observes row creation inside the insert transaction.
//
// BeforeInsert runs before the INSERT statement and may fill in the row
// (the sequence assigner sets the initial ordering key here). AfterInsert
// runs once row.ID holds the store-assigned id. An error from either aborts
// the insert.
type InsertHook interface {
	BeforeInsert(ctx context.Context, tx *Tx, spec ir.EntitySpec, row *ir.Row) error
	AfterInsert(ctx context.Context, tx *Tx, spec ir.EntitySpec, row *ir.Row) error
}

// Insert writes a new row and sets row.ID and row.Entity.
// Hooks run in order around the INSERT. A non-zero row.ID is rejected:
// ids are always store-assigned.
func (t *Tx) Insert(ctx context.Context, spec ir.EntitySpec, row *ir.Row, hooks ...InsertHook) error {
	if row.ID != 0 {
		return fmt.Errorf("insert %s: row already has id %d", spec.Name, row.ID)
	}
	row.Entity = spec.Name

	for _, h := range hooks {
		if err := h.BeforeInsert(ctx, t, spec, row); err != nil {
			return fmt.Errorf("insert %s: before insert: %w", spec.Name, err)
		}
	}

	params, err := fieldParams(spec, row.Fields)
	if err != nil {
		return fmt.Errorf("insert %s: %w", spec.Name, err)
	}

	cols := []string{querysql.Quote(ir.ColumnSequence)}
	for _, f := range spec.Fields {
		cols = append(cols, querysql.Quote(f.Name))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	args := append([]any{row.Sequence}, params...)

	result, err := t.tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			querysql.Quote(spec.Table), strings.Join(cols, ", "), placeholders),
		args...,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", spec.Name, ClassifyError(err))
	}

	row.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert %s: last insert id: %w", spec.Name, err)
	}

	for _, h := range hooks {
		if err := h.AfterInsert(ctx, t, spec, row); err != nil {
			return fmt.Errorf("insert %s: after insert: %w", spec.Name, err)
		}
	}
	return nil
}

// UpdateSequence sets one row's ordering key. A nil key removes the row
// from ordering. Returns ErrNotFound when the id does not exist.
func (t *Tx) UpdateSequence(ctx context.Context, spec ir.EntitySpec, id int64, key *float64) error {
	result, err := t.tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?",
			querysql.Quote(spec.Table), querysql.Quote(ir.ColumnSequence), querysql.Quote(ir.ColumnID)),
		key, id,
	)
	if err != nil {
		return fmt.Errorf("update %s sequence: %w", spec.Name, ClassifyError(err))
	}
	return requireOneRow(result, spec, id)
}

// Delete removes a row. Peers keep their keys; nothing is compacted.
func (t *Tx) Delete(ctx context.Context, spec ir.EntitySpec, id int64) error {
	result, err := t.tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
			querysql.Quote(spec.Table), querysql.Quote(ir.ColumnID)),
		id,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", spec.Name, ClassifyError(err))
	}
	return requireOneRow(result, spec, id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireOneRow(result rowsAffecter, spec ir.EntitySpec, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s row %d: rows affected: %w", spec.Name, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s row %d: %w", spec.Name, id, ErrNotFound)
	}
	return nil
}

// WriteMove appends a committed reposition to the move journal and returns
// its journal id. Call it inside the transaction that made the move.
func (t *Tx) WriteMove(ctx context.Context, rec ir.MoveRecord) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO reorder_moves
		(token, entity, row_id, scope_hash, from_rank, to_rank, prev_key, next_key, new_key, loosened, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Token,
		rec.Entity,
		rec.RowID,
		rec.ScopeHash,
		rec.FromRank,
		rec.ToRank,
		rec.PrevKey,
		rec.NextKey,
		rec.NewKey,
		rec.Loosened,
		rec.EngineVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("write move: %w", ClassifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write move: last insert id: %w", err)
	}
	return id, nil
}
