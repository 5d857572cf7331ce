package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/reorder/internal/compiler"
	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/store"
)

// Engine is the ordering engine over a set of registered entities.
//
// Entity specs are validated and their tables ensured once, in New. After
// that the registry is read-only, so an Engine is safe for concurrent use;
// the store serializes the transactions.
type Engine struct {
	store           *store.Store
	specs           map[string]ir.EntitySpec
	names           []string // Declaration order
	tokens          TokenGenerator
	logger          *slog.Logger
	loosenThreshold float64
	assigner        *SequenceAssigner
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithLogger sets the structured logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTokenGenerator sets the operation token source (default: UUIDv7Generator).
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = gen
	}
}

// WithLoosenThreshold sets the neighbor gap below which a reposition
// renormalizes its scope.
//
// Default: 1e-6 (DefaultLoosenThreshold). Larger values make tests reach
// renormalization in fewer moves.
func WithLoosenThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.loosenThreshold = threshold
	}
}

// New creates an Engine for specs.
//
// Every spec is validated and its table and ordering index are created if
// missing. Any invalid spec aborts construction with all validation errors
// joined, so bad scope configuration fails at startup rather than per call.
func New(ctx context.Context, s *store.Store, specs []ir.EntitySpec, opts ...Option) (*Engine, error) {
	if errs := compiler.ValidateAll(specs); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, ve := range errs {
			joined[i] = ve
		}
		return nil, fmt.Errorf("invalid entity specs: %w", errors.Join(joined...))
	}

	e := &Engine{
		store:           s,
		specs:           make(map[string]ir.EntitySpec, len(specs)),
		tokens:          UUIDv7Generator{},
		logger:          slog.Default(),
		loosenThreshold: DefaultLoosenThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.assigner = NewSequenceAssigner(e.logger)

	for _, spec := range specs {
		if err := s.EnsureEntity(ctx, spec); err != nil {
			return nil, err
		}
		e.specs[spec.Name] = spec
		e.names = append(e.names, spec.Name)
	}

	e.logger.Debug("engine ready", "entities", len(e.names))
	return e, nil
}

// Entities returns the registered specs in declaration order.
func (e *Engine) Entities() []ir.EntitySpec {
	out := make([]ir.EntitySpec, len(e.names))
	for i, name := range e.names {
		out[i] = e.specs[name]
	}
	return out
}

// Spec returns the registered spec for an entity name.
func (e *Engine) Spec(name string) (ir.EntitySpec, bool) {
	spec, ok := e.specs[name]
	return spec, ok
}

func (e *Engine) spec(name string) (ir.EntitySpec, error) {
	spec, ok := e.specs[name]
	if !ok {
		return ir.EntitySpec{}, newUnknownEntityError(name)
	}
	return spec, nil
}

// Create inserts row, assigning its initial key unless it already has one.
// On success row.ID and row.Sequence hold the stored values.
func (e *Engine) Create(ctx context.Context, row *ir.Row) error {
	spec, err := e.spec(row.Entity)
	if err != nil {
		return err
	}

	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.Insert(ctx, spec, row, e.assigner)
	})
	return classify("create", spec.Name, row.ID, err)
}

// Get reads one row.
func (e *Engine) Get(ctx context.Context, entity string, id int64) (ir.Row, error) {
	spec, err := e.spec(entity)
	if err != nil {
		return ir.Row{}, err
	}

	var row ir.Row
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		row, err = tx.Get(ctx, spec, id)
		return err
	})
	return row, classify("get", entity, id, err)
}

// List returns the ordered rows of one scope. scope must name every scope
// field of the entity (ir.IRNull selects the NULL group); a global entity
// takes nil. Rows with a NULL key are not listed.
func (e *Engine) List(ctx context.Context, entity string, scope ir.IRObject) ([]ir.Row, error) {
	spec, err := e.spec(entity)
	if err != nil {
		return nil, err
	}
	q, err := ScopeFor(spec, scope)
	if err != nil {
		return nil, err
	}

	var rows []ir.Row
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		rows, err = q.All(ctx, tx)
		return err
	})
	return rows, classify("list", entity, 0, err)
}

// Rank returns item's current 1-based rank within its scope.
func (e *Engine) Rank(ctx context.Context, item Sequenced) (int, error) {
	spec, err := e.spec(item.EntityName())
	if err != nil {
		return 0, err
	}

	var rank int
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		row, err := tx.Get(ctx, spec, item.RowID())
		if err != nil {
			return err
		}
		key, ok := row.SequenceKey()
		if !ok {
			return newNotSequencedError(spec.Name, row.ID)
		}
		rank, err = scopeOf(spec, &row).Rank(ctx, tx, key, row.ID)
		return err
	})
	return rank, classify("rank", spec.Name, item.RowID(), err)
}

// Remove deletes item's row. Remaining keys are left as they are: ranks
// close up, keys are not compacted.
func (e *Engine) Remove(ctx context.Context, item Sequenced) error {
	spec, err := e.spec(item.EntityName())
	if err != nil {
		return err
	}

	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.Delete(ctx, spec, item.RowID())
	})
	return classify("remove", spec.Name, item.RowID(), err)
}

// Loosen renormalizes item's scope to keys 1.0..n in current order and
// returns n. item's key is updated.
func (e *Engine) Loosen(ctx context.Context, item Sequenced) (int, error) {
	spec, err := e.spec(item.EntityName())
	if err != nil {
		return 0, err
	}

	var rows []ir.Row
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		row, err := tx.Get(ctx, spec, item.RowID())
		if err != nil {
			return err
		}
		if _, ok := row.SequenceKey(); !ok {
			return newNotSequencedError(spec.Name, row.ID)
		}
		rows, err = loosen(ctx, tx, scopeOf(spec, &row), nil)
		return err
	})
	if err != nil {
		return 0, classify("loosen", spec.Name, item.RowID(), err)
	}

	for _, r := range rows {
		if r.ID == item.RowID() {
			item.SetSequence(*r.Sequence)
		}
	}
	e.logger.Info("scope loosened", "entity", spec.Name, "row_id", item.RowID(), "rows", len(rows))
	return len(rows), nil
}

// History returns journal records for entity, oldest first. rowID 0 reads
// all rows; limit > 0 keeps the most recent records.
func (e *Engine) History(ctx context.Context, entity string, rowID int64, limit int) ([]ir.MoveRecord, error) {
	if _, err := e.spec(entity); err != nil {
		return nil, err
	}

	var moves []ir.MoveRecord
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		moves, err = tx.ReadMoves(ctx, entity, rowID, limit)
		return err
	})
	return moves, classify("history", entity, rowID, err)
}
