package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/reorder/internal/ir"
)

// =============================================================================
// EntitySpec Validation Tests
// =============================================================================

func validCourse() ir.EntitySpec {
	return ir.EntitySpec{
		Name:  "Course",
		Table: "courses",
		Fields: []ir.FieldSpec{
			{Name: "category_id", Type: ir.FieldInt},
			{Name: "title", Type: ir.FieldString},
		},
		Scope: []string{"category_id"},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateEntitySpecValid(t *testing.T) {
	assert.Empty(t, Validate(validCourse()))
}

func TestValidateEntitySpecGlobalScope(t *testing.T) {
	spec := ir.EntitySpec{Name: "Book", Table: "books"}
	assert.Empty(t, Validate(spec), "no fields and no scope is one global ordering")
}

func TestValidateEntitySpecMissingTable(t *testing.T) {
	spec := validCourse()
	spec.Table = ""

	errs := Validate(spec)
	assert.Equal(t, []string{ErrMissingName}, codes(errs))
}

func TestValidateEntitySpecInvalidIdentifiers(t *testing.T) {
	spec := validCourse()
	spec.Table = "courses; DROP TABLE x"
	spec.Fields = append(spec.Fields, ir.FieldSpec{Name: "Title", Type: ir.FieldString})

	errs := Validate(spec)
	assert.Equal(t, []string{ErrInvalidIdentifier, ErrInvalidIdentifier}, codes(errs))
}

func TestValidateEntitySpecReservedColumns(t *testing.T) {
	spec := validCourse()
	spec.Fields = append(spec.Fields,
		ir.FieldSpec{Name: "id", Type: ir.FieldInt},
		ir.FieldSpec{Name: "sequence", Type: ir.FieldInt},
	)

	errs := Validate(spec)
	assert.Equal(t, []string{ErrReservedColumn, ErrReservedColumn}, codes(errs))
}

func TestValidateEntitySpecFloatForbidden(t *testing.T) {
	spec := validCourse()
	spec.Fields = append(spec.Fields, ir.FieldSpec{Name: "weight", Type: "float"})

	errs := Validate(spec)
	assert.Equal(t, []string{ErrFloatTypeForbidden}, codes(errs))
	assert.Contains(t, errs[0].Error(), "Course.fields[2].type")
}

func TestValidateEntitySpecUnknownType(t *testing.T) {
	spec := validCourse()
	spec.Fields[1].Type = "text"

	errs := Validate(spec)
	assert.Equal(t, []string{ErrInvalidFieldType}, codes(errs))
}

func TestValidateEntitySpecDuplicateField(t *testing.T) {
	spec := validCourse()
	spec.Fields = append(spec.Fields, ir.FieldSpec{Name: "title", Type: ir.FieldString})

	errs := Validate(spec)
	assert.Equal(t, []string{ErrDuplicateName}, codes(errs))
}

func TestValidateEntitySpecUnknownScopeField(t *testing.T) {
	spec := validCourse()
	spec.Scope = []string{"category_id", "tenant_id"}

	errs := Validate(spec)
	assert.Equal(t, []string{ErrUnknownScopeField}, codes(errs))
	assert.Contains(t, errs[0].Message, "tenant_id")
}

func TestValidateEntitySpecDuplicateScopeField(t *testing.T) {
	spec := validCourse()
	spec.Scope = []string{"category_id", "category_id"}

	errs := Validate(spec)
	assert.Equal(t, []string{ErrDuplicateName}, codes(errs))
}

func TestValidateEntitySpecAssignMode(t *testing.T) {
	spec := validCourse()
	spec.Assign = ir.AssignScoped
	assert.Empty(t, Validate(spec))

	spec.Assign = "random"
	assert.Equal(t, []string{ErrInvalidAssignMode}, codes(Validate(spec)))
}

func TestValidateAllDuplicates(t *testing.T) {
	a := validCourse()
	b := validCourse()
	c := ir.EntitySpec{Name: "Lesson", Table: "courses"}

	errs := ValidateAll([]ir.EntitySpec{a, b, c})

	// b repeats both name and table; c repeats the table.
	assert.Equal(t, []string{ErrDuplicateName, ErrDuplicateName, ErrDuplicateName}, codes(errs))
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Entity: "Course", Field: "scope[0]", Code: "E206", Message: "bad", Line: 4}
	assert.Equal(t, "[E206] line 4: Course.scope[0]: bad", err.Error())

	err = ValidationError{Field: "load", Code: "E004", Message: "boom"}
	assert.Equal(t, "[E004] load: boom", err.Error())
}

func TestIsValidIdentifier(t *testing.T) {
	assert.True(t, IsValidIdentifier("category_id"))
	assert.True(t, IsValidIdentifier("_x1"))
	assert.False(t, IsValidIdentifier("1x"))
	assert.False(t, IsValidIdentifier("has-dash"))
	assert.False(t, IsValidIdentifier(""))
}
