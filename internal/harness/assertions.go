package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/reorder/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", event.Step+1, describeEvent(event))
		}
	}

	return buf.String()
}

// describeEvent renders one trace line, e.g. "move intro -> 2 (key 2.5)".
func describeEvent(e TraceEvent) string {
	var b strings.Builder
	b.WriteString(e.Op + " " + e.Row)
	if e.Op == OpMove {
		fmt.Fprintf(&b, " -> %d", e.Rank)
	}
	switch {
	case e.Error != "":
		b.WriteString(" ! " + e.Error)
	case e.Key != "":
		b.WriteString(" (key " + e.Key + ")")
	}
	return b.String()
}

// scopeRows lists the ordering an assertion selects.
func (h *Harness) scopeRows(ctx context.Context, a Assertion) ([]ir.Row, error) {
	scope, err := convertArgsToIRObject(a.Scope)
	if err != nil {
		return nil, fmt.Errorf("scope: %w", err)
	}
	if len(scope) == 0 {
		scope = nil
	}
	return h.engine.List(ctx, a.Entity, scope)
}

// assertOrder checks that the scope lists exactly the aliased rows, in order.
func (h *Harness) assertOrder(ctx context.Context, trace []TraceEvent, a Assertion) error {
	rows, err := h.scopeRows(ctx, a)
	if err != nil {
		return fmt.Errorf("order assertion on %s: %w", a.Entity, err)
	}

	actual := make([]string, len(rows))
	for i, r := range rows {
		actual[i] = h.alias(r.Entity, r.ID)
	}
	if !slices.Equal(actual, a.Rows) {
		return &AssertionError{
			Type:     AssertOrder,
			Expected: fmt.Sprintf("%s %s ordered as %v", a.Entity, formatScope(a.Scope), a.Rows),
			Actual:   fmt.Sprintf("%v", actual),
			Trace:    trace,
		}
	}
	return nil
}

// assertKeys checks the scope's ascending keys.
func (h *Harness) assertKeys(ctx context.Context, trace []TraceEvent, a Assertion) error {
	rows, err := h.scopeRows(ctx, a)
	if err != nil {
		return fmt.Errorf("keys assertion on %s: %w", a.Entity, err)
	}

	actual := make([]string, len(rows))
	for i, r := range rows {
		actual[i] = ir.FormatKey(*r.Sequence)
	}
	expected := make([]string, len(a.Keys))
	for i, k := range a.Keys {
		expected[i] = ir.FormatKey(k)
	}
	if !slices.Equal(actual, expected) {
		return &AssertionError{
			Type:     AssertKeys,
			Expected: fmt.Sprintf("%s %s keys [%s]", a.Entity, formatScope(a.Scope), strings.Join(expected, " ")),
			Actual:   fmt.Sprintf("[%s]", strings.Join(actual, " ")),
			Trace:    trace,
		}
	}
	return nil
}

// assertRank checks one row's current rank.
func (h *Harness) assertRank(ctx context.Context, trace []TraceEvent, a Assertion) error {
	row, ok := h.rows[a.Row]
	if !ok {
		return fmt.Errorf("rank assertion: unknown row alias %q", a.Row)
	}

	rank, err := h.engine.Rank(ctx, row)
	if err != nil {
		return &AssertionError{
			Type:     AssertRank,
			Expected: fmt.Sprintf("%s at rank %d", a.Row, a.Rank),
			Actual:   fmt.Sprintf("error: %v", err),
			Trace:    trace,
		}
	}
	if rank != a.Rank {
		return &AssertionError{
			Type:     AssertRank,
			Expected: fmt.Sprintf("%s at rank %d", a.Row, a.Rank),
			Actual:   fmt.Sprintf("rank %d", rank),
			Trace:    trace,
		}
	}
	return nil
}

// assertJournalCount checks the number of committed moves of an entity.
func (h *Harness) assertJournalCount(ctx context.Context, trace []TraceEvent, a Assertion) error {
	moves, err := h.engine.History(ctx, a.Entity, 0, 0)
	if err != nil {
		return fmt.Errorf("journal_count assertion on %s: %w", a.Entity, err)
	}
	if len(moves) != *a.Count {
		return &AssertionError{
			Type:     AssertJournalCount,
			Expected: fmt.Sprintf("%d moves of %s", *a.Count, a.Entity),
			Actual:   fmt.Sprintf("%d moves", len(moves)),
			Trace:    trace,
		}
	}
	return nil
}

// formatScope creates a human-readable description of scope values.
func formatScope(scope map[string]any) string {
	if len(scope) == 0 {
		return "(global)"
	}

	keys := make([]string, 0, len(scope))
	for k := range scope {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, scope[k]))
	}
	return strings.Join(parts, " AND ")
}

// EvaluateAssertions evaluates all assertions against the harness state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(ctx context.Context, h *Harness, result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertOrder:
			err = h.assertOrder(ctx, result.Trace, assertion)
		case AssertKeys:
			err = h.assertKeys(ctx, result.Trace, assertion)
		case AssertRank:
			err = h.assertRank(ctx, result.Trace, assertion)
		case AssertJournalCount:
			err = h.assertJournalCount(ctx, result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
