package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/reorder/internal/querysql"
)

// Tx is one SQLite transaction. All reads and writes of a single engine
// operation go through the same Tx.
type Tx struct {
	tx       *sql.Tx
	compiler *querysql.SQLCompiler
}

// WithTx runs fn inside a transaction. fn's error rolls everything back;
// a nil return commits. Begin and commit failures are classified, so a
// busy database surfaces as ErrConflict.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", ClassifyError(err))
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx, compiler: s.compiler}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", ClassifyError(err))
	}
	return nil
}
