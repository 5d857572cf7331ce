package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWithAssertions runs three rows a, b, c in category 1 with c moved to
// rank 1, then evaluates assertions.
func runWithAssertions(t *testing.T, assertions ...Assertion) *Result {
	t.Helper()
	scenario := &Scenario{
		Name:        "assertions",
		Description: "assertion evaluation",
		Setup: []Step{
			createStep("Course", "a", 1),
			createStep("Course", "b", 1),
			createStep("Course", "c", 1),
		},
		Flow:       []Step{moveStep("c", 1, nil)},
		Assertions: assertions,
	}
	result, err := Run(scenario, testSpecs())
	require.NoError(t, err)
	return result
}

func TestAssertions_Pass(t *testing.T) {
	scope := map[string]any{"category_id": 1}
	result := runWithAssertions(t,
		Assertion{Type: AssertOrder, Entity: "Course", Scope: scope, Rows: []string{"c", "a", "b"}},
		Assertion{Type: AssertKeys, Entity: "Course", Scope: scope, Keys: []float64{0.5, 1, 2}},
		Assertion{Type: AssertRank, Row: "a", Rank: 2},
		Assertion{Type: AssertJournalCount, Entity: "Course", Count: intPtr(1)},
		Assertion{Type: AssertOrder, Entity: "Course", Scope: map[string]any{"category_id": 2}, Rows: []string{}},
	)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertOrder_Failure(t *testing.T) {
	result := runWithAssertions(t,
		Assertion{Type: AssertOrder, Entity: "Course", Scope: map[string]any{"category_id": 1}, Rows: []string{"a", "b", "c"}},
	)
	require.False(t, result.Pass)
	require.Len(t, result.Errors, 1)

	msg := result.Errors[0]
	assert.Contains(t, msg, "Assertion failed: order")
	assert.Contains(t, msg, "Expected: Course category_id=1 ordered as [a b c]")
	assert.Contains(t, msg, "Actual: [c a b]")
	assert.Contains(t, msg, "[4] move c -> 1 (key 0.5)")
}

func TestAssertKeys_Failure(t *testing.T) {
	result := runWithAssertions(t,
		Assertion{Type: AssertKeys, Entity: "Course", Scope: map[string]any{"category_id": 1}, Keys: []float64{1, 2, 3}},
	)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: Course category_id=1 keys [1 2 3]")
	assert.Contains(t, result.Errors[0], "Actual: [0.5 1 2]")
}

func TestAssertRank_Failure(t *testing.T) {
	result := runWithAssertions(t,
		Assertion{Type: AssertRank, Row: "c", Rank: 3},
		Assertion{Type: AssertRank, Row: "nobody", Rank: 1},
	)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Expected: c at rank 3")
	assert.Contains(t, result.Errors[0], "Actual: rank 1")
	assert.Equal(t, `rank assertion: unknown row alias "nobody"`, result.Errors[1])
}

func TestAssertJournalCount_Failure(t *testing.T) {
	result := runWithAssertions(t,
		Assertion{Type: AssertJournalCount, Entity: "Course", Count: intPtr(2)},
		Assertion{Type: AssertJournalCount, Entity: "Lesson", Count: intPtr(0)},
	)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Expected: 2 moves of Course")
	assert.Contains(t, result.Errors[0], "Actual: 1 moves")
	assert.Contains(t, result.Errors[1], "UNKNOWN_ENTITY")
}

func TestAssertions_ScopeErrors(t *testing.T) {
	result := runWithAssertions(t,
		Assertion{Type: AssertOrder, Entity: "Course", Rows: []string{}},
		Assertion{Type: AssertKeys, Entity: "Course", Scope: map[string]any{"category_id": 0.5}, Keys: []float64{}},
		Assertion{Type: "bogus"},
	)
	require.Len(t, result.Errors, 3)
	assert.True(t, strings.HasPrefix(result.Errors[0], "order assertion on Course:"))
	assert.Contains(t, result.Errors[0], "missing scope field")
	assert.Contains(t, result.Errors[1], "floats are forbidden")
	assert.Equal(t, `assertion[2]: unknown assertion type "bogus"`, result.Errors[2])
}

func TestDescribeEvent(t *testing.T) {
	assert.Equal(t, "create a (key 1)", describeEvent(TraceEvent{Op: OpCreate, Row: "a", Key: "1"}))
	assert.Equal(t, "move a -> 3 ! INVALID_RANK", describeEvent(TraceEvent{Op: OpMove, Row: "a", Rank: 3, Error: "INVALID_RANK"}))
	assert.Equal(t, "remove a", describeEvent(TraceEvent{Op: OpRemove, Row: "a"}))
}

func TestFormatScope(t *testing.T) {
	assert.Equal(t, "(global)", formatScope(nil))
	assert.Equal(t, "a=1 AND b=x", formatScope(map[string]any{"b": "x", "a": 1}))
}
