package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines an ordering test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario (and names its golden file).
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// LoosenThreshold overrides the engine's renormalization threshold.
	// Zero keeps the default.
	LoosenThreshold float64 `yaml:"loosen_threshold,omitempty"`

	// Setup creates the initial rows. Setup steps must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the steps under test, with optional expectations.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final orderings and journal.
	Assertions []Assertion `yaml:"assertions"`
}

// Step performs exactly one operation.
type Step struct {
	// Create names the entity of a new row.
	Create string `yaml:"create,omitempty"`

	// As is the alias later steps and assertions use for the created row.
	As string `yaml:"as,omitempty"`

	// Fields holds the created row's column values. YAML null stores NULL.
	Fields map[string]any `yaml:"fields,omitempty"`

	// Key sets an explicit initial key; omitted means assigned.
	Key *float64 `yaml:"key,omitempty"`

	// Move, Loosen and Remove name the aliased row to operate on.
	Move   string `yaml:"move,omitempty"`
	Loosen string `yaml:"loosen,omitempty"`
	Remove string `yaml:"remove,omitempty"`

	// Rank is the move target. Required with move; may be invalid on purpose.
	Rank *int `yaml:"rank,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the step must succeed and nothing else is checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Op returns the step's operation, or "" if it names none.
func (s Step) Op() string {
	switch {
	case s.Create != "":
		return OpCreate
	case s.Move != "":
		return OpMove
	case s.Loosen != "":
		return OpLoosen
	case s.Remove != "":
		return OpRemove
	}
	return ""
}

// Target returns the row alias the step operates on.
func (s Step) Target() string {
	switch s.Op() {
	case OpCreate:
		return s.As
	case OpMove:
		return s.Move
	case OpLoosen:
		return s.Loosen
	default:
		return s.Remove
	}
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected SequenceError code (e.g. "INVALID_RANK").
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Key is the row's expected key after the step.
	Key *float64 `yaml:"key,omitempty"`

	// Loosened expects the move to have (or not have) renormalized the scope.
	Loosened *bool `yaml:"loosened,omitempty"`

	// Noop expects a move to the row's current rank.
	Noop bool `yaml:"noop,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "order": the scope's rows, in order, are exactly Rows
	// - "keys": the scope's ascending keys are exactly Keys
	// - "rank": Row is at Rank
	// - "journal_count": Entity has Count committed moves
	Type string `yaml:"type"`

	// Entity and Scope select the ordering (order, keys, journal_count).
	// Scope must name every scope field; omit it for a global entity.
	Entity string         `yaml:"entity,omitempty"`
	Scope  map[string]any `yaml:"scope,omitempty"`

	Rows []string  `yaml:"rows,omitempty"`
	Keys []float64 `yaml:"keys,omitempty"`

	Row  string `yaml:"row,omitempty"`
	Rank int    `yaml:"rank,omitempty"`

	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOrder        = "order"
	AssertKeys         = "keys"
	AssertRank         = "rank"
	AssertJournalCount = "journal_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.LoosenThreshold < 0 {
		return fmt.Errorf("loosen_threshold must be non-negative")
	}

	aliases := make(map[string]bool)
	check := func(section string, i int, step Step) error {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("%s[%d]: %w", section, i, err)
		}
		if step.Op() == OpCreate && step.As != "" {
			if aliases[step.As] {
				return fmt.Errorf("%s[%d]: alias %q already used", section, i, step.As)
			}
			aliases[step.As] = true
		}
		return nil
	}
	for i, step := range s.Setup {
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
		if err := check("setup", i, step); err != nil {
			return err
		}
	}
	for i, step := range s.Flow {
		if err := check("flow", i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks that a step names exactly one operation and carries
// only the fields that operation uses.
func validateStep(step Step) error {
	ops := 0
	for _, name := range []string{step.Create, step.Move, step.Loosen, step.Remove} {
		if name != "" {
			ops++
		}
	}
	if ops != 1 {
		return fmt.Errorf("exactly one of create, move, loosen, remove is required")
	}

	op := step.Op()
	if op != OpCreate && (step.As != "" || step.Fields != nil || step.Key != nil) {
		return fmt.Errorf("as, fields and key are only valid with create")
	}
	if op == OpMove && step.Rank == nil {
		return fmt.Errorf("rank is required for move")
	}
	if op != OpMove && step.Rank != nil {
		return fmt.Errorf("rank is only valid with move")
	}
	if step.Expect != nil && op != OpMove && (step.Expect.Loosened != nil || step.Expect.Noop) {
		return fmt.Errorf("expect.loosened and expect.noop are only valid with move")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOrder:
		if a.Entity == "" {
			return fmt.Errorf("assertions[%d]: entity is required for order", index)
		}
		if a.Rows == nil {
			return fmt.Errorf("assertions[%d]: rows list is required for order (use [] for empty)", index)
		}
	case AssertKeys:
		if a.Entity == "" {
			return fmt.Errorf("assertions[%d]: entity is required for keys", index)
		}
		if a.Keys == nil {
			return fmt.Errorf("assertions[%d]: keys list is required for keys (use [] for empty)", index)
		}
	case AssertRank:
		if a.Row == "" {
			return fmt.Errorf("assertions[%d]: row is required for rank", index)
		}
		if a.Rank < 1 {
			return fmt.Errorf("assertions[%d]: rank must be at least 1", index)
		}
	case AssertJournalCount:
		if a.Entity == "" {
			return fmt.Errorf("assertions[%d]: entity is required for journal_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for journal_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
