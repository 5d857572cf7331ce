package queryir

import (
	"fmt"
	"math"

	"github.com/roach88/reorder/internal/ir"
)

// ValidationResult lists structural problems found in a query.
type ValidationResult struct {
	// IsValid is true when Problems is empty.
	IsValid bool

	// Problems describes each rule the query breaks.
	Problems []string
}

// Err returns the problems as a single error, or nil.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return fmt.Errorf("invalid query: %v", r.Problems)
}

// Validate checks a query before it is handed to a backend.
//
// Rules:
//  1. Table and column names must be plain identifiers
//  2. Select lists its columns explicitly
//  3. Limit and Offset are non-negative
//  4. Literal values are scalars (no objects)
//  5. Ordering keys are finite
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		IsValid:  len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) identifier(kind, name string) {
	if !ir.IsIdentifier(name) {
		v.addProblem("%s %q is not a valid identifier", kind, name)
	}
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addProblem("nil query")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Count:
		v.identifier("table", query.From)
		v.validatePredicate(query.Filter)
	case *Count:
		v.identifier("table", query.From)
		v.validatePredicate(query.Filter)
	case Max:
		v.identifier("table", query.From)
		v.identifier("column", query.Column)
		v.validatePredicate(query.Filter)
	case *Max:
		v.identifier("table", query.From)
		v.identifier("column", query.Column)
		v.validatePredicate(query.Filter)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	v.identifier("table", sel.From)

	if len(sel.Columns) == 0 {
		v.addProblem("select from %q has no columns", sel.From)
	}
	for _, col := range sel.Columns {
		v.identifier("column", col)
	}
	for _, term := range sel.OrderBy {
		v.identifier("order column", term.Field)
	}
	if sel.Limit < 0 {
		v.addProblem("negative limit %d", sel.Limit)
	}
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}

	v.validatePredicate(sel.Filter)
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return
	}

	switch pred := p.(type) {
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case NotNull:
		v.identifier("column", pred.Field)
	case *NotNull:
		v.identifier("column", pred.Field)
	case Precedes:
		v.validatePrecedes(pred)
	case *Precedes:
		v.validatePrecedes(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	v.identifier("column", eq.Field)

	switch eq.Value.(type) {
	case ir.IRNull, ir.IRString, ir.IRInt, ir.IRBool:
	case nil:
		v.addProblem("field %q compared to a nil value", eq.Field)
	default:
		v.addProblem("field %q compared to non-scalar %T", eq.Field, eq.Value)
	}
}

func (v *validator) validatePrecedes(p Precedes) {
	if math.IsNaN(p.Key) || math.IsInf(p.Key, 0) {
		v.addProblem("ordering key %v is not finite", p.Key)
	}
}
