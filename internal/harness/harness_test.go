package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reorder/internal/ir"
)

func TestRun_TestdataScenariosPass(t *testing.T) {
	for _, name := range []string{"move_to_first", "append_and_past_end", "loosen_threshold"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := Run(scenario, testSpecs())
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_TraceRecordsSteps(t *testing.T) {
	scenario := &Scenario{
		Name:        "trace",
		Description: "trace events",
		Setup: []Step{
			createStep("Course", "a", 1),
			createStep("Course", "b", 1),
		},
		Flow: []Step{
			moveStep("b", 1, nil),
			moveStep("b", 1, &ExpectClause{Noop: true}),
			{Loosen: "a"},
			{Remove: "b"},
		},
		Assertions: []Assertion{
			{Type: AssertOrder, Entity: "Course", Scope: map[string]any{"category_id": 1}, Rows: []string{"a"}},
		},
	}

	result, err := Run(scenario, testSpecs())
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 6)
	assert.Equal(t, TraceEvent{Step: 0, Op: OpCreate, Row: "a", Entity: "Course", Key: "1"}, result.Trace[0])
	assert.Equal(t, TraceEvent{Step: 2, Op: OpMove, Row: "b", Entity: "Course", Rank: 1, Key: "0.5", Token: "move-0001"}, result.Trace[2])
	assert.Equal(t, TraceEvent{Step: 3, Op: OpMove, Row: "b", Entity: "Course", Rank: 1, Key: "0.5", Noop: true}, result.Trace[3])
	assert.Equal(t, TraceEvent{Step: 4, Op: OpLoosen, Row: "a", Entity: "Course", Key: "2", Rows: 2}, result.Trace[4])
	assert.Equal(t, TraceEvent{Step: 5, Op: OpRemove, Row: "b", Entity: "Course"}, result.Trace[5])

	require.Len(t, result.Journal, 1)
	assert.Equal(t, JournalEntry{
		Token: "move-0001", Entity: "Course", Row: "b", From: 2, To: 1, NewKey: "0.5",
	}, result.Journal[0])
}

func TestRun_DefaultAlias(t *testing.T) {
	scenario := &Scenario{
		Name:        "default_alias",
		Description: "unnamed rows",
		Flow: []Step{
			{Create: "Book", Fields: map[string]any{"title": "Dune"}},
			{Create: "Book"},
		},
		Assertions: []Assertion{
			{Type: AssertOrder, Entity: "Book", Rows: []string{"Book#1", "Book#2"}},
		},
	}

	result, err := Run(scenario, testSpecs())
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "Book#1", result.Trace[0].Row)
}

func TestRun_NullScopeGroup(t *testing.T) {
	scenario := &Scenario{
		Name:        "null_scope",
		Description: "rows without a category share one ordering",
		Setup: []Step{
			createStep("Course", "x", nil),
			createStep("Course", "y", nil),
			createStep("Course", "z", 1),
		},
		Flow: []Step{moveStep("y", 1, &ExpectClause{Key: floatPtr(0.5)})},
		Assertions: []Assertion{
			{Type: AssertOrder, Entity: "Course", Scope: map[string]any{"category_id": nil}, Rows: []string{"y", "x"}},
			{Type: AssertOrder, Entity: "Course", Scope: map[string]any{"category_id": 1}, Rows: []string{"z"}},
		},
	}

	result, err := Run(scenario, testSpecs())
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExpectMismatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "every expect clause is wrong",
		Setup: []Step{
			createStep("Course", "a", 1),
			createStep("Course", "b", 1),
		},
		Flow: []Step{
			moveStep("b", 1, &ExpectClause{Key: floatPtr(0.25), Loosened: boolPtr(true)}),
			moveStep("b", 9, nil),
			moveStep("a", 1, &ExpectClause{Error: "INVALID_RANK"}),
			moveStep("a", 2, &ExpectClause{Noop: true}),
		},
		Assertions: []Assertion{
			{Type: AssertJournalCount, Entity: "Course", Count: intPtr(3)},
		},
	}

	result, err := Run(scenario, testSpecs())
	require.NoError(t, err)
	assert.False(t, result.Pass)

	assert.Equal(t, []string{
		`flow[0] move b: expected key 0.25, got "0.5"`,
		"flow[0] move b: expected loosened=true, got false",
		"flow[1] move b: unexpected error INVALID_RANK",
		"flow[2] move a: expected INVALID_RANK, got success",
		"flow[3] move a: expected a no-op move",
	}, result.Errors)
}

func TestRun_SetupFailureAborts(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "setup must succeed",
		Setup:       []Step{{Create: "Lesson", As: "l"}},
		Flow:        []Step{moveStep("l", 1, nil)},
		Assertions:  []Assertion{{Type: AssertRank, Row: "l", Rank: 1}},
	}

	_, err := Run(scenario, testSpecs())
	assert.ErrorContains(t, err, "setup step 0: create l failed with UNKNOWN_ENTITY")
}

func TestRun_UnknownAliasAborts(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown_alias",
		Description: "moves need a created row",
		Flow:        []Step{moveStep("ghost", 1, nil)},
		Assertions:  []Assertion{{Type: AssertRank, Row: "ghost", Rank: 1}},
	}

	_, err := Run(scenario, testSpecs())
	assert.ErrorContains(t, err, `flow step 0: unknown row alias "ghost"`)
}

func TestRun_FloatFieldAborts(t *testing.T) {
	scenario := &Scenario{
		Name:        "float_field",
		Description: "fields are never floats",
		Flow:        []Step{{Create: "Course", Fields: map[string]any{"category_id": 1.5}}},
		Assertions:  []Assertion{{Type: AssertJournalCount, Entity: "Course", Count: intPtr(0)}},
	}

	_, err := Run(scenario, testSpecs())
	assert.ErrorContains(t, err, "floats are forbidden")
}

func TestRun_InvalidSpecs(t *testing.T) {
	specs := []ir.EntitySpec{{Name: "Bad", Table: "Bad Table"}}
	scenario := &Scenario{
		Name:        "bad_specs",
		Description: "specs are validated",
		Flow:        []Step{{Create: "Bad"}},
		Assertions:  []Assertion{{Type: AssertJournalCount, Entity: "Bad", Count: intPtr(0)}},
	}

	_, err := Run(scenario, specs)
	assert.ErrorContains(t, err, "failed to create engine")
}

func TestConvertToIRValue(t *testing.T) {
	tests := []struct {
		in      any
		want    ir.IRValue
		wantErr bool
	}{
		{nil, ir.IRNull{}, false},
		{"x", ir.IRString("x"), false},
		{7, ir.IRInt(7), false},
		{int64(8), ir.IRInt(8), false},
		{true, ir.IRBool(true), false},
		{3.0, ir.IRInt(3), false},
		{3.5, nil, true},
		{[]any{1}, nil, true},
	}
	for _, tt := range tests {
		got, err := convertToIRValue(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
