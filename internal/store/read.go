package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/queryir"
)

// Get reads one row by id. Returns ErrNotFound when absent.
func (t *Tx) Get(ctx context.Context, spec ir.EntitySpec, id int64) (ir.Row, error) {
	rows, err := t.Select(ctx, spec, queryir.Select{
		Filter: queryir.Equals{Field: ir.ColumnID, Value: ir.IRInt(id)},
		Limit:  1,
	})
	if err != nil {
		return ir.Row{}, err
	}
	if len(rows) == 0 {
		return ir.Row{}, fmt.Errorf("get %s row %d: %w", spec.Name, id, ErrNotFound)
	}
	return rows[0], nil
}

// Select runs q against the entity's table. From and Columns are filled in
// from spec; ordering always ends with id ASC.
//
// Returns empty slice (not nil) if no rows match.
func (t *Tx) Select(ctx context.Context, spec ir.EntitySpec, q queryir.Select) ([]ir.Row, error) {
	q.From = spec.Table
	q.Columns = rowColumns(spec)

	query, params, err := t.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", spec.Name, err)
	}

	rows, err := t.tx.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", spec.Name, ClassifyError(err))
	}
	defer rows.Close()

	result := []ir.Row{}
	for rows.Next() {
		row, err := scanRow(rows, spec)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", spec.Name, ClassifyError(err))
	}
	return result, nil
}

// Count returns the number of rows matching q.
func (t *Tx) Count(ctx context.Context, q queryir.Count) (int, error) {
	query, params, err := t.compiler.Compile(q)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", q.From, err)
	}

	var n int
	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.From, ClassifyError(err))
	}
	return n, nil
}

// Max returns the largest value of q.Column, and false when no row matched.
func (t *Tx) Max(ctx context.Context, q queryir.Max) (float64, bool, error) {
	query, params, err := t.compiler.Compile(q)
	if err != nil {
		return 0, false, fmt.Errorf("max %s.%s: %w", q.From, q.Column, err)
	}

	var v sql.NullFloat64
	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&v); err != nil {
		return 0, false, fmt.Errorf("max %s.%s: %w", q.From, q.Column, ClassifyError(err))
	}
	return v.Float64, v.Valid, nil
}

// ReadMoves returns journal records for an entity in journal order.
// rowID 0 reads every row's moves; limit > 0 keeps only the most recent.
//
// Returns empty slice (not nil) if no records exist.
func (t *Tx) ReadMoves(ctx context.Context, entity string, rowID int64, limit int) ([]ir.MoveRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, token, entity, row_id, scope_hash, from_rank, to_rank,
		       prev_key, next_key, new_key, loosened, engine_version
		FROM (
			SELECT * FROM reorder_moves
			WHERE entity = ? AND (? = 0 OR row_id = ?)
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC
	`, entity, rowID, rowID, limit)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", ClassifyError(err))
	}
	defer rows.Close()

	moves := []ir.MoveRecord{}
	for rows.Next() {
		var m ir.MoveRecord
		if err := rows.Scan(
			&m.ID, &m.Token, &m.Entity, &m.RowID, &m.ScopeHash,
			&m.FromRank, &m.ToRank, &m.PrevKey, &m.NextKey, &m.NewKey,
			&m.Loosened, &m.EngineVersion,
		); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return moves, nil
}
