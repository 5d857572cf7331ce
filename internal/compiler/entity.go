package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reorder/internal/ir"
)

// CompileEntity parses a CUE value into an EntitySpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the entity struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: Course: { table: "courses", ... }`)
//	spec, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.Course")))
//
// CompileEntity only extracts structure; call Validate on the result to
// check identifiers, scope fields and types.
func CompileEntity(v cue.Value) (*ir.EntitySpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.EntitySpec{}

	// Entity name is the struct label (last path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	tableVal := v.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "table is required",
			Pos:     v.Pos(),
		}
	}
	table, err := tableVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Table = table

	spec.Fields, err = parseFields(v)
	if err != nil {
		return nil, err
	}

	spec.Scope, err = parseScope(v)
	if err != nil {
		return nil, err
	}

	// assign is optional; empty means AssignGlobal
	assignVal := v.LookupPath(cue.ParsePath("assign"))
	if assignVal.Exists() {
		assign, err := assignVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Assign = ir.AssignMode(assign)
	}

	return spec, nil
}

// parseFields extracts user columns in declaration order.
func parseFields(v cue.Value) ([]ir.FieldSpec, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, nil // an entity may carry only id and sequence
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []ir.FieldSpec
	for iter.Next() {
		typeName, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "fields." + iter.Label(),
				Message: "field type must be a string (string, int or bool)",
				Pos:     iter.Value().Pos(),
			}
		}
		fields = append(fields, ir.FieldSpec{
			Name: iter.Label(),
			Type: ir.FieldType(typeName),
		})
	}
	return fields, nil
}

// parseScope extracts the ordered scope field list.
func parseScope(v cue.Value) ([]string, error) {
	scopeVal := v.LookupPath(cue.ParsePath("scope"))
	if !scopeVal.Exists() {
		return nil, nil // global scope
	}

	// A single string is accepted as shorthand for a one-field scope.
	if name, err := scopeVal.String(); err == nil {
		return []string{name}, nil
	}

	iter, err := scopeVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "scope",
			Message: "scope must be a list of field names",
			Pos:     scopeVal.Pos(),
		}
	}

	var scope []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("scope[%d]", len(scope)),
				Message: "scope entries must be field names",
				Pos:     iter.Value().Pos(),
			}
		}
		scope = append(scope, name)
	}
	return scope, nil
}

// CompileError reports a structural problem with a CUE entity declaration.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
