package ir

import (
	"fmt"
	"regexp"
)

// FieldType is the declared type of a user column.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldBool   FieldType = "bool"
)

// ValidFieldTypes lists the allowed user column types.
// Floats are deliberately absent: the ordering key is the only float column.
var ValidFieldTypes = map[FieldType]bool{
	FieldString: true,
	FieldInt:    true,
	FieldBool:   true,
}

// AssignMode selects how a new row's initial ordering key is computed.
type AssignMode string

const (
	// AssignGlobal sets sequence = MAX(id) over the whole table + 1.
	// Keys then reflect global creation order, even across scopes.
	AssignGlobal AssignMode = "global"

	// AssignScoped sets sequence = MAX(sequence) within the row's scope + 1.
	AssignScoped AssignMode = "scoped"
)

// IdentifierPattern restricts table and column names so they can be
// quoted into DDL and queries without escaping concerns.
var IdentifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsIdentifier reports whether name is safe to use as a table or column.
func IsIdentifier(name string) bool {
	return IdentifierPattern.MatchString(name)
}

// Reserved column names every entity table carries.
const (
	ColumnID       = "id"
	ColumnSequence = "sequence"
)

// FieldSpec declares one user column.
type FieldSpec struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// EntitySpec is a compiled entity declaration.
//
// Scope is the ordered list of field names whose equality partitions rows
// into independent orderings. An empty Scope means one global ordering.
type EntitySpec struct {
	Name   string      `json:"name"`
	Table  string      `json:"table"`
	Fields []FieldSpec `json:"fields"`
	Scope  []string    `json:"scope"`
	Assign AssignMode  `json:"assign"`
}

// Field returns the declared field with the given name.
func (s EntitySpec) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// AssignModeOrDefault returns Assign, defaulting to AssignGlobal.
func (s EntitySpec) AssignModeOrDefault() AssignMode {
	if s.Assign == "" {
		return AssignGlobal
	}
	return s.Assign
}

// CheckValue verifies v fits the field's declared type. NULL fits every type.
func (f FieldSpec) CheckValue(v IRValue) error {
	switch v.(type) {
	case IRNull:
		return nil
	case IRString:
		if f.Type == FieldString {
			return nil
		}
	case IRInt:
		if f.Type == FieldInt {
			return nil
		}
	case IRBool:
		if f.Type == FieldBool {
			return nil
		}
	}
	return fmt.Errorf("field %q: value of type %T does not fit declared type %s", f.Name, v, f.Type)
}
