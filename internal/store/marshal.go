package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/querysql"
)

// marshalSpec converts an EntitySpec to JSON TEXT for the registry.
func marshalSpec(spec ir.EntitySpec) (string, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("marshal spec: %w", err)
	}
	return string(data), nil
}

// unmarshalSpec parses registry JSON TEXT back into an EntitySpec.
func unmarshalSpec(data string) (ir.EntitySpec, error) {
	var spec ir.EntitySpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return ir.EntitySpec{}, fmt.Errorf("unmarshal spec: %w", err)
	}
	return spec, nil
}

// rowColumns lists the columns read for a row: id, sequence, then fields in
// declaration order.
func rowColumns(spec ir.EntitySpec) []string {
	cols := make([]string, 0, len(spec.Fields)+2)
	cols = append(cols, ir.ColumnID, ir.ColumnSequence)
	for _, f := range spec.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// fieldParams converts a row's field values into INSERT parameters, in
// declaration order. Undeclared fields and type mismatches are rejected.
// Strings are NFC-normalized so scope equality is byte equality.
func fieldParams(spec ir.EntitySpec, fields ir.IRObject) ([]any, error) {
	for name := range fields {
		if _, ok := spec.Field(name); !ok {
			return nil, fmt.Errorf("%s has no field %q", spec.Name, name)
		}
	}

	params := make([]any, len(spec.Fields))
	for i, f := range spec.Fields {
		v, ok := fields[f.Name]
		if !ok || v == nil {
			v = ir.IRNull{}
		}
		if err := f.CheckValue(v); err != nil {
			return nil, err
		}
		p, err := querysql.ParamValue(ir.Normalize(v))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		params[i] = p
	}
	return params, nil
}

// fieldValue converts a raw driver value into the IR type declared for f.
func fieldValue(f ir.FieldSpec, raw any) (ir.IRValue, error) {
	if raw == nil {
		return ir.IRNull{}, nil
	}

	switch f.Type {
	case ir.FieldString:
		switch v := raw.(type) {
		case string:
			return ir.IRString(v), nil
		case []byte:
			return ir.IRString(v), nil
		}
	case ir.FieldInt:
		if v, ok := raw.(int64); ok {
			return ir.IRInt(v), nil
		}
	case ir.FieldBool:
		switch v := raw.(type) {
		case bool:
			return ir.IRBool(v), nil
		case int64:
			return ir.IRBool(v != 0), nil
		}
	}
	return nil, fmt.Errorf("column %q: unexpected %T for type %s", f.Name, raw, f.Type)
}

// scanner is satisfied by *sql.Rows and *sql.Row.
type scanner interface {
	Scan(dest ...any) error
}

// scanRow reads one row in rowColumns order.
func scanRow(sc scanner, spec ir.EntitySpec) (ir.Row, error) {
	var (
		id  int64
		seq *float64
	)
	raw := make([]any, len(spec.Fields))
	dest := make([]any, 0, len(spec.Fields)+2)
	dest = append(dest, &id, &seq)
	for i := range raw {
		dest = append(dest, &raw[i])
	}

	if err := sc.Scan(dest...); err != nil {
		return ir.Row{}, fmt.Errorf("scan %s row: %w", spec.Name, err)
	}

	row := ir.Row{Entity: spec.Name, ID: id, Sequence: seq, Fields: make(ir.IRObject, len(spec.Fields))}
	for i, f := range spec.Fields {
		v, err := fieldValue(f, raw[i])
		if err != nil {
			return ir.Row{}, fmt.Errorf("scan %s row %d: %w", spec.Name, id, err)
		}
		row.Fields[f.Name] = v
	}
	return row, nil
}
