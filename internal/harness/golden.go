package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/reorder/internal/ir"
)

// Snapshot renders a scenario's trace and journal as canonical JSON.
// Keys appear as strings (ir.FormatKey) since canonical JSON has no floats.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, e := range result.Trace {
		event := map[string]any{
			"step":   e.Step,
			"op":     e.Op,
			"row":    e.Row,
			"entity": e.Entity,
		}
		if e.Op == OpMove {
			event["rank"] = e.Rank
		}
		if e.Key != "" {
			event["key"] = e.Key
		}
		if e.Token != "" {
			event["token"] = e.Token
		}
		if e.Loosened {
			event["loosened"] = true
		}
		if e.Noop {
			event["noop"] = true
		}
		if e.Op == OpLoosen && e.Error == "" {
			event["rows"] = e.Rows
		}
		if e.Error != "" {
			event["error"] = e.Error
		}
		trace[i] = event
	}

	journal := make([]any, len(result.Journal))
	for i, j := range result.Journal {
		journal[i] = map[string]any{
			"token":    j.Token,
			"entity":   j.Entity,
			"row":      j.Row,
			"from":     j.From,
			"to":       j.To,
			"new_key":  j.NewKey,
			"loosened": j.Loosened,
		}
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"trace":         trace,
		"journal":       journal,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario, specs []ir.EntitySpec) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, specs)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
