package compiler

import (
	"fmt"

	"github.com/roach88/reorder/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrInvalidIdentifier  = "E201" // table or field name is not a safe identifier
	ErrReservedColumn     = "E202" // field uses a reserved column name (id, sequence)
	ErrInvalidFieldType   = "E203" // unknown field type
	ErrFloatTypeForbidden = "E204" // float user columns are not allowed
	ErrDuplicateName      = "E205" // duplicate field, scope entry, entity or table
	ErrUnknownScopeField  = "E206" // scope references an undeclared field
	ErrInvalidAssignMode  = "E207" // assign is not global or scoped
	ErrMissingName        = "E208" // entity name or table is empty
)

var identifierPattern = ir.IdentifierPattern

// ValidationError represents an entity spec validation error.
type ValidationError struct {
	Entity  string `json:"entity,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	prefix := e.Field
	if e.Entity != "" {
		prefix = e.Entity + "." + e.Field
	}
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, prefix, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, prefix, e.Message)
}

// IsValidIdentifier reports whether name is safe to use as a table or column.
func IsValidIdentifier(name string) bool {
	return ir.IsIdentifier(name)
}

// Validate checks one entity spec. Returns all errors found (does not fail-fast).
func Validate(spec ir.EntitySpec) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Entity:  spec.Name,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if spec.Name == "" {
		add("name", ErrMissingName, "entity name is required")
	}

	switch {
	case spec.Table == "":
		add("table", ErrMissingName, "table is required")
	case !IsValidIdentifier(spec.Table):
		add("table", ErrInvalidIdentifier, "table %q must match %s", spec.Table, identifierPattern)
	}

	seen := make(map[string]bool)
	for i, f := range spec.Fields {
		path := fmt.Sprintf("fields[%d]", i)
		if !IsValidIdentifier(f.Name) {
			add(path, ErrInvalidIdentifier, "field %q must match %s", f.Name, identifierPattern)
		}
		if f.Name == ir.ColumnID || f.Name == ir.ColumnSequence {
			add(path, ErrReservedColumn, "field %q is reserved", f.Name)
		}
		if seen[f.Name] {
			add(path, ErrDuplicateName, "duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		switch {
		case f.Type == "float" || f.Type == "float64" || f.Type == "number":
			add(path+".type", ErrFloatTypeForbidden, "field %q: float columns are not allowed", f.Name)
		case !ir.ValidFieldTypes[f.Type]:
			add(path+".type", ErrInvalidFieldType, "field %q: unknown type %q (string, int or bool)", f.Name, f.Type)
		}
	}

	inScope := make(map[string]bool)
	for i, name := range spec.Scope {
		path := fmt.Sprintf("scope[%d]", i)
		if inScope[name] {
			add(path, ErrDuplicateName, "duplicate scope field %q", name)
		}
		inScope[name] = true
		if !seen[name] {
			add(path, ErrUnknownScopeField, "scope field %q is not a declared field", name)
		}
	}

	switch spec.Assign {
	case "", ir.AssignGlobal, ir.AssignScoped:
	default:
		add("assign", ErrInvalidAssignMode, "assign %q must be %q or %q", spec.Assign, ir.AssignGlobal, ir.AssignScoped)
	}

	return errs
}

// ValidateAll validates every spec and cross-checks entity and table uniqueness.
func ValidateAll(specs []ir.EntitySpec) []ValidationError {
	var errs []ValidationError
	names := make(map[string]bool)
	tables := make(map[string]bool)

	for _, spec := range specs {
		errs = append(errs, Validate(spec)...)

		if names[spec.Name] {
			errs = append(errs, ValidationError{
				Entity: spec.Name, Field: "name", Code: ErrDuplicateName,
				Message: fmt.Sprintf("entity %q declared twice", spec.Name),
			})
		}
		names[spec.Name] = true

		if spec.Table != "" && tables[spec.Table] {
			errs = append(errs, ValidationError{
				Entity: spec.Name, Field: "table", Code: ErrDuplicateName,
				Message: fmt.Sprintf("table %q used by more than one entity", spec.Table),
			})
		}
		tables[spec.Table] = true
	}
	return errs
}
