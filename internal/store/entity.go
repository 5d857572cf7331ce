package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/querysql"
)

// columnTypes maps field types to SQLite declared types. BOOLEAN lets the
// driver hand back Go bools.
var columnTypes = map[ir.FieldType]string{
	ir.FieldString: "TEXT",
	ir.FieldInt:    "INTEGER",
	ir.FieldBool:   "BOOLEAN",
}

// EnsureEntity creates the entity's table and ordering index if missing and
// records the spec in the registry. Re-registering an identical spec is a
// no-op; a changed spec returns ErrSpecMismatch.
//
// The spec must already be validated: its identifiers are quoted into DDL.
func (s *Store) EnsureEntity(ctx context.Context, spec ir.EntitySpec) error {
	hash, err := ir.SpecHash(spec)
	if err != nil {
		return fmt.Errorf("ensure entity %s: %w", spec.Name, err)
	}
	specJSON, err := marshalSpec(spec)
	if err != nil {
		return fmt.Errorf("ensure entity %s: %w", spec.Name, err)
	}

	return s.WithTx(ctx, func(tx *Tx) error {
		var existing string
		err := tx.tx.QueryRowContext(ctx,
			`SELECT spec_hash FROM reorder_entities WHERE name = ?`, spec.Name,
		).Scan(&existing)
		switch {
		case err == nil && existing != hash:
			return fmt.Errorf("ensure entity %s: %w", spec.Name, ErrSpecMismatch)
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("ensure entity %s: read registry: %w", spec.Name, ClassifyError(err))
		}

		if _, err := tx.tx.ExecContext(ctx, createTableSQL(spec)); err != nil {
			return fmt.Errorf("ensure entity %s: create table: %w", spec.Name, ClassifyError(err))
		}
		if _, err := tx.tx.ExecContext(ctx, createIndexSQL(spec)); err != nil {
			return fmt.Errorf("ensure entity %s: create index: %w", spec.Name, ClassifyError(err))
		}

		_, err = tx.tx.ExecContext(ctx, `
			INSERT INTO reorder_entities (name, table_name, spec, spec_hash)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING
		`, spec.Name, spec.Table, specJSON, hash)
		if err != nil {
			return fmt.Errorf("ensure entity %s: register: %w", spec.Name, ClassifyError(err))
		}
		return nil
	})
}

// Entities returns every registered spec, ordered by name.
func (s *Store) Entities(ctx context.Context) ([]ir.EntitySpec, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT spec FROM reorder_entities ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", ClassifyError(err))
	}
	defer rows.Close()

	specs := []ir.EntitySpec{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		spec, err := unmarshalSpec(data)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return specs, nil
}

func createTableSQL(spec ir.EntitySpec) string {
	cols := []string{
		querysql.Quote(ir.ColumnID) + " INTEGER PRIMARY KEY AUTOINCREMENT",
		querysql.Quote(ir.ColumnSequence) + " REAL NULL",
	}
	for _, f := range spec.Fields {
		cols = append(cols, querysql.Quote(f.Name)+" "+columnTypes[f.Type]+" NULL")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		querysql.Quote(spec.Table), strings.Join(cols, ",\n\t"))
}

// createIndexSQL indexes (scope..., sequence) so scope filters and ordered
// windows share one index.
func createIndexSQL(spec ir.EntitySpec) string {
	cols := make([]string, 0, len(spec.Scope)+1)
	for _, name := range spec.Scope {
		cols = append(cols, querysql.Quote(name))
	}
	cols = append(cols, querysql.Quote(ir.ColumnSequence))
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		querysql.Quote(indexName(spec)), querysql.Quote(spec.Table), strings.Join(cols, ", "))
}

func indexName(spec ir.EntitySpec) string {
	return "idx_" + spec.Table + "_order"
}
