package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/reorder/internal/engine"
	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/store"
	"github.com/roach88/reorder/internal/testutil"
)

// rowRef identifies a row across entities; ids are per table.
type rowRef struct {
	entity string
	id     int64
}

// Harness runs one scenario against its own engine and store.
type Harness struct {
	engine  *engine.Engine
	logger  *slog.Logger
	rows    map[string]*ir.Row
	aliases map[rowRef]string
}

// Run executes a test scenario against specs and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// numbered operation tokens so that reruns produce identical journals.
//
// Execution flow:
// 1. Create fresh in-memory database and register specs
// 2. Execute setup steps (any error aborts the run)
// 3. Execute flow steps, checking expect clauses
// 4. Evaluate assertions and read the move journal
func Run(scenario *Scenario, specs []ir.EntitySpec) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	tokens := testutil.NewSequentialTokenGenerator("move")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithTokenGenerator(tokens),
	}
	if scenario.LoosenThreshold > 0 {
		opts = append(opts, engine.WithLoosenThreshold(scenario.LoosenThreshold))
	}
	eng, err := engine.New(ctx, st, specs, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{
		engine:  eng,
		logger:  logger,
		rows:    make(map[string]*ir.Row),
		aliases: make(map[rowRef]string),
	}

	result := NewResult()
	for i, step := range scenario.Setup {
		event, err := h.execute(ctx, len(result.Trace), step)
		if err != nil {
			return nil, fmt.Errorf("setup step %d: %w", i, err)
		}
		if event.Error != "" {
			return nil, fmt.Errorf("setup step %d: %s %s failed with %s", i, event.Op, event.Row, event.Error)
		}
		result.AddTrace(event)
	}

	for i, step := range scenario.Flow {
		event, err := h.execute(ctx, len(result.Trace), step)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
		result.AddTrace(event)

		for _, msg := range h.checkExpect(step, event) {
			result.AddError(fmt.Sprintf("flow[%d] %s %s: %s", i, event.Op, event.Row, msg))
		}
		h.logger.Info("flow step completed",
			"step", i,
			"op", event.Op,
			"row", event.Row,
			"error", event.Error,
		)
	}

	for _, msg := range EvaluateAssertions(ctx, h, result, scenario.Assertions) {
		result.AddError(msg)
	}

	journal, err := h.journal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	result.Journal = journal

	return result, nil
}

// execute runs one step and describes it as a trace event. SequenceErrors
// are recorded in the event; other errors (unknown aliases, bad field
// values) abort the scenario.
func (h *Harness) execute(ctx context.Context, index int, step Step) (TraceEvent, error) {
	event := TraceEvent{Step: index, Op: step.Op(), Row: step.Target()}

	if event.Op == OpCreate {
		fields, err := convertArgsToIRObject(step.Fields)
		if err != nil {
			return event, fmt.Errorf("fields: %w", err)
		}
		row := &ir.Row{Entity: step.Create, Fields: fields}
		if step.Key != nil {
			row.Sequence = ir.Key(*step.Key)
		}
		event.Entity = step.Create

		if err := h.engine.Create(ctx, row); err != nil {
			return h.failed(event, err)
		}
		if event.Row == "" {
			event.Row = fmt.Sprintf("%s#%d", row.Entity, row.ID)
		}
		h.rows[event.Row] = row
		h.aliases[rowRef{row.Entity, row.ID}] = event.Row
		event.Key = ir.FormatKey(*row.Sequence)
		return event, nil
	}

	row, ok := h.rows[event.Row]
	if !ok {
		return event, fmt.Errorf("unknown row alias %q", event.Row)
	}
	event.Entity = row.Entity

	switch event.Op {
	case OpMove:
		event.Rank = *step.Rank
		rec, err := h.engine.Reposition(ctx, row, *step.Rank)
		if err != nil {
			return h.failed(event, err)
		}
		if rec == nil {
			event.Noop = true
		} else {
			event.Token = rec.Token
			event.Loosened = rec.Loosened
		}
		event.Key = ir.FormatKey(*row.Sequence)
	case OpLoosen:
		n, err := h.engine.Loosen(ctx, row)
		if err != nil {
			return h.failed(event, err)
		}
		event.Rows = n
		event.Key = ir.FormatKey(*row.Sequence)
	case OpRemove:
		if err := h.engine.Remove(ctx, row); err != nil {
			return h.failed(event, err)
		}
	}
	return event, nil
}

// failed records a SequenceError code in the event; anything else is fatal.
func (h *Harness) failed(event TraceEvent, err error) (TraceEvent, error) {
	var se *engine.SequenceError
	if !errors.As(err, &se) {
		return event, err
	}
	event.Error = string(se.Code)
	return event, nil
}

// checkExpect compares a flow step's outcome to its expect clause.
func (h *Harness) checkExpect(step Step, event TraceEvent) []string {
	expect := step.Expect
	if expect == nil {
		if event.Error != "" {
			return []string{fmt.Sprintf("unexpected error %s", event.Error)}
		}
		return nil
	}

	var msgs []string
	if event.Error != expect.Error {
		want := expect.Error
		if want == "" {
			want = "success"
		}
		got := event.Error
		if got == "" {
			got = "success"
		}
		msgs = append(msgs, fmt.Sprintf("expected %s, got %s", want, got))
	}
	if expect.Key != nil {
		want := ir.FormatKey(*expect.Key)
		if event.Key != want {
			msgs = append(msgs, fmt.Sprintf("expected key %s, got %q", want, event.Key))
		}
	}
	if expect.Loosened != nil && event.Loosened != *expect.Loosened {
		msgs = append(msgs, fmt.Sprintf("expected loosened=%t, got %t", *expect.Loosened, event.Loosened))
	}
	if expect.Noop && !event.Noop {
		msgs = append(msgs, "expected a no-op move")
	}
	return msgs
}

// alias returns the scenario name of a row, or entity#id for rows the
// scenario never named.
func (h *Harness) alias(entity string, id int64) string {
	if name, ok := h.aliases[rowRef{entity, id}]; ok {
		return name
	}
	return fmt.Sprintf("%s#%d", entity, id)
}

// journal reads the move journal of every entity, ordered by token.
func (h *Harness) journal(ctx context.Context) ([]JournalEntry, error) {
	entries := []JournalEntry{}
	for _, spec := range h.engine.Entities() {
		moves, err := h.engine.History(ctx, spec.Name, 0, 0)
		if err != nil {
			return nil, err
		}
		for _, m := range moves {
			entries = append(entries, JournalEntry{
				Token:    m.Token,
				Entity:   m.Entity,
				Row:      h.alias(m.Entity, m.RowID),
				From:     m.FromRank,
				To:       m.ToRank,
				NewKey:   ir.FormatKey(m.NewKey),
				Loosened: m.Loosened,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Token < entries[j].Token })
	return entries, nil
}

// convertArgsToIRObject converts a map[string]any to ir.IRObject.
// This handles YAML-parsed values and converts them to proper IRValue types.
func convertArgsToIRObject(args map[string]any) (ir.IRObject, error) {
	if args == nil {
		return ir.IRObject{}, nil
	}

	result := make(ir.IRObject, len(args))
	for key, val := range args {
		irVal, err := convertToIRValue(val)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		result[key] = irVal
	}
	return result, nil
}

// convertToIRValue converts a YAML-parsed scalar to an IRValue.
// YAML null becomes IRNull so scenarios can address the NULL scope group.
func convertToIRValue(val any) (ir.IRValue, error) {
	switch v := val.(type) {
	case nil:
		return ir.IRNull{}, nil
	case string:
		return ir.IRString(v), nil
	case int:
		return ir.IRInt(int64(v)), nil
	case int64:
		return ir.IRInt(v), nil
	case bool:
		return ir.IRBool(v), nil
	case float64:
		// Only the ordering key is a float; field values must be integral
		if v == float64(int64(v)) {
			return ir.IRInt(int64(v)), nil
		}
		return nil, fmt.Errorf("floats are forbidden in fields: %v", v)
	default:
		return nil, fmt.Errorf("unsupported type %T", val)
	}
}
