// Package harness provides scenario testing for entity orderings.
//
// The harness runs YAML scenarios against a fresh in-memory store: rows are
// created, moved, loosened and removed through the engine, and the final
// orderings and move journal are checked with assertions and golden
// snapshots.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: append_after_last
//	description: "Moving the first of two rows to rank 2 appends it"
//	loosen_threshold: 0.3   # optional, engine default otherwise
//	setup:
//	  - create: Course
//	    as: intro
//	    fields: { category_id: 1 }
//	    key: 1
//	flow:
//	  - move: intro
//	    rank: 2
//	    expect:
//	      key: 2.5
//	  - move: intro
//	    rank: 0
//	    expect:
//	      error: INVALID_RANK
//	assertions:
//	  - type: order
//	    entity: Course
//	    scope: { category_id: 1 }
//	    rows: [advanced, intro]
//	  - type: keys
//	    entity: Course
//	    scope: { category_id: 1 }
//	    keys: [2, 2.5]
//
// Each step performs exactly one of create, move, loosen or remove. Rows are
// referred to by the alias given with "as" when they were created.
//
// # Assertion Types
//
//   - order: the scope lists exactly the given rows, in order
//   - keys: the scope's ascending keys equal the given keys
//   - rank: a row's current rank
//   - journal_count: number of committed moves for an entity
//
// # Deterministic Testing
//
// Every run uses a fresh ":memory:" database and numbered operation tokens
// ("move-0001", ...), so the trace and journal of a scenario are identical
// across runs and can be compared against golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/append.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario, specs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
