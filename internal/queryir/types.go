package queryir

import "github.com/roach88/reorder/internal/ir"

// Query represents an abstract read in the QueryIR.
//
// Query types:
//   - Select: ordered row access with an optional window
//   - Count: number of matching rows
//   - Max: largest value of one column over matching rows
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition.
//
// Predicate types:
//   - Equals: field = literal (IS NULL for ir.IRNull)
//   - NotNull: field IS NOT NULL
//   - Precedes: row sorts strictly before (key, id)
//   - And: all predicates must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// OrderTerm is one ORDER BY key.
type OrderTerm struct {
	Field string
	Desc  bool
}

// Select reads rows from an entity table.
//
// Semantics:
//
//	SELECT <columns> FROM <from> WHERE <filter> ORDER BY <order_by>, id
//	LIMIT <limit> OFFSET <offset>
//
// Backends always append id as a final tiebreaker so results are total.
// Limit 0 means unlimited. Columns must be explicit.
type Select struct {
	From    string    // Table name
	Columns []string  // Explicit column list (no SELECT *)
	Filter  Predicate // WHERE conditions (nil = no filter)
	OrderBy []OrderTerm
	Limit   int
	Offset  int
}

func (Select) queryNode() {}

// Count counts rows matching Filter.
type Count struct {
	From   string
	Filter Predicate
}

func (Count) queryNode() {}

// Max returns the largest non-NULL value of Column over rows matching
// Filter, or NULL when there are none.
type Max struct {
	From   string
	Column string
	Filter Predicate
}

func (Max) queryNode() {}

// Equals represents a field-equals-literal predicate.
//
// Example:
//
//	Equals{Field: "category_id", Value: ir.IRInt(7)}
//
// Translates to SQL:
//
//	"category_id" = ?
//
// With Value ir.IRNull{} it translates to "category_id" IS NULL.
type Equals struct {
	Field string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// NotNull matches rows where Field is set.
type NotNull struct {
	Field string
}

func (NotNull) predicateNode() {}

// Precedes matches rows ordered strictly before the position (Key, ID)
// under "sequence ASC, id ASC".
type Precedes struct {
	Key float64
	ID  int64
}

func (Precedes) predicateNode() {}

// And represents a conjunction of predicates (empty = always true).
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
