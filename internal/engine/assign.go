package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/queryir"
	"github.com/roach88/reorder/internal/store"
)

// SequenceAssigner gives new rows their initial ordering key.
// It is the store.InsertHook every Engine.Create passes to the store.
//
// Assignment modes:
//   - global (default): MAX(id) over the whole table + 1, or 1.0 when empty.
//     Keys follow creation order across all scopes.
//   - scoped: MAX(sequence) within the row's scope + 1, or 1.0 when empty.
//
// A row that already carries a key keeps it.
type SequenceAssigner struct {
	logger *slog.Logger
}

var _ store.InsertHook = (*SequenceAssigner)(nil)

// NewSequenceAssigner creates an assigner logging to logger.
func NewSequenceAssigner(logger *slog.Logger) *SequenceAssigner {
	if logger == nil {
		logger = slog.Default()
	}
	return &SequenceAssigner{logger: logger}
}

// BeforeInsert sets row's key if it has none.
func (a *SequenceAssigner) BeforeInsert(ctx context.Context, tx *store.Tx, spec ir.EntitySpec, row *ir.Row) error {
	if _, ok := row.SequenceKey(); ok {
		return nil
	}

	var (
		last  float64
		found bool
		err   error
	)
	switch spec.AssignModeOrDefault() {
	case ir.AssignScoped:
		last, found, err = scopeOf(spec, row).MaxKey(ctx, tx)
	default:
		last, found, err = tx.Max(ctx, queryir.Max{From: spec.Table, Column: ir.ColumnID})
	}
	if err != nil {
		return classify("assign sequence", spec.Name, 0, err)
	}

	key := 1.0
	if found {
		key = last + 1
	}
	row.SetSequence(key)
	return nil
}

// AfterInsert logs the created row.
func (a *SequenceAssigner) AfterInsert(ctx context.Context, tx *store.Tx, spec ir.EntitySpec, row *ir.Row) error {
	key, _ := row.SequenceKey()
	a.logger.Debug("row created",
		"entity", spec.Name,
		"row_id", row.ID,
		"key", ir.FormatKey(key),
		"assign", string(spec.AssignModeOrDefault()),
	)
	return nil
}
