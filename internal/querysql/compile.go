package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// Every Select ends its ORDER BY with id ASC so results are a total order.
// All values are parameterized, never interpolated. Identifiers are
// validated by queryir.Validate and double-quoted.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q).Err(); err != nil {
		return "", nil, err
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Count:
		return c.compileAggregate("COUNT(*)", query.From, query.Filter)
	case *queryir.Count:
		return c.compileAggregate("COUNT(*)", query.From, query.Filter)
	case queryir.Max:
		return c.compileAggregate("MAX("+quote(query.Column)+")", query.From, query.Filter)
	case *queryir.Max:
		return c.compileAggregate("MAX("+quote(query.Column)+")", query.From, query.Filter)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	cols := make([]string, len(q.Columns))
	for i, col := range q.Columns {
		cols[i] = quote(col)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), quote(q.From))

	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE " + filterSQL)
		params = filterParams
	}

	b.WriteString(" ORDER BY " + stableOrderKey(q.OrderBy))

	// SQLite requires LIMIT before OFFSET; -1 means unlimited.
	switch {
	case q.Limit > 0:
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	case q.Offset > 0:
		b.WriteString(" LIMIT -1")
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET ?")
		params = append(params, q.Offset)
	}

	return b.String(), params, nil
}

func (c *SQLCompiler) compileAggregate(expr, from string, filter queryir.Predicate) (string, []any, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s", expr, quote(from))
	if filter == nil {
		return sql, nil, nil
	}
	filterSQL, params, err := c.compilePredicate(filter)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return sql + " WHERE " + filterSQL, params, nil
}

// stableOrderKey renders the ORDER BY terms, always ending with id ASC.
func stableOrderKey(terms []queryir.OrderTerm) string {
	parts := make([]string, 0, len(terms)+1)
	hasID := false
	for _, t := range terms {
		dir := "ASC"
		if t.Desc {
			dir = "DESC"
		}
		parts = append(parts, quote(t.Field)+" "+dir)
		if t.Field == ir.ColumnID {
			hasID = true
			break // id is unique; later terms never apply
		}
	}
	if !hasID {
		parts = append(parts, quote(ir.ColumnID)+" ASC")
	}
	return strings.Join(parts, ", ")
}

// compilePredicate compiles a predicate to a WHERE fragment.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return compileEquals(pred)
	case *queryir.Equals:
		return compileEquals(*pred)
	case queryir.NotNull:
		return quote(pred.Field) + " IS NOT NULL", nil, nil
	case *queryir.NotNull:
		return quote(pred.Field) + " IS NOT NULL", nil, nil
	case queryir.Precedes:
		return compilePrecedes(pred), []any{pred.Key, pred.Key, pred.ID}, nil
	case *queryir.Precedes:
		return compilePrecedes(*pred), []any{pred.Key, pred.Key, pred.ID}, nil
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles to "field = ?", or "field IS NULL" for a NULL literal.
func compileEquals(eq queryir.Equals) (string, []any, error) {
	if _, isNull := eq.Value.(ir.IRNull); isNull {
		return quote(eq.Field) + " IS NULL", nil, nil
	}
	param, err := ParamValue(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	return quote(eq.Field) + " = ?", []any{param}, nil
}

func compilePrecedes(queryir.Precedes) string {
	seq, id := quote(ir.ColumnSequence), quote(ir.ColumnID)
	return fmt.Sprintf("(%s < ? OR (%s = ? AND %s < ?))", seq, seq, id)
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	var sqlParts []string
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// quote wraps a validated identifier in double quotes.
func quote(name string) string {
	return `"` + name + `"`
}

// Quote is the exported form of quote for DDL built outside this package.
// Callers must pass names that satisfy ir.IsIdentifier.
func Quote(name string) string {
	return quote(name)
}

// ParamValue converts an ir.IRValue to a Go native SQL parameter.
// Booleans are stored as 0/1 integers, matching SQLite's own encoding.
func ParamValue(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case ir.IRNull, nil:
		return nil, nil
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
