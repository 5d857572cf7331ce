package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a row id does not exist.
	ErrNotFound = errors.New("row not found")

	// ErrConflict is returned when SQLite reports the database busy or
	// locked by another writer.
	ErrConflict = errors.New("concurrent write conflict")

	// ErrSpecMismatch is returned when an entity is already registered with
	// a different declaration.
	ErrSpecMismatch = errors.New("entity spec does not match registered spec")
)

// conflictError keeps the driver error reachable while matching ErrConflict.
type conflictError struct {
	cause error
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("%s: %v", ErrConflict, e.cause)
}

func (e *conflictError) Is(target error) bool { return target == ErrConflict }

func (e *conflictError) Unwrap() error { return e.cause }

// ClassifyError maps driver errors onto store sentinels.
// SQLITE_BUSY and SQLITE_LOCKED become ErrConflict; sql.ErrNoRows becomes
// ErrNotFound. Anything else is returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return &conflictError{cause: err}
		}
	}
	return err
}

// IsConflict reports whether err is (or wraps) a write conflict.
func IsConflict(err error) bool {
	return errors.Is(ClassifyError(err), ErrConflict)
}
