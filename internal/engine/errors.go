package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/reorder/internal/store"
)

// SequenceError represents a failed ordering operation.
//
// SequenceError includes structured fields for diagnostics. Err holds the
// underlying storage error, if any.
type SequenceError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Entity and RowID identify the affected row.
	Entity string
	RowID  int64

	// Rank is the requested rank (reposition only).
	Rank int

	// Err is the wrapped cause.
	Err error
}

// ErrorCode categorizes sequence errors.
type ErrorCode string

const (
	// ErrCodeInvalidRank indicates a rank below 1 or one with no neighbor window.
	ErrCodeInvalidRank ErrorCode = "INVALID_RANK"

	// ErrCodeStorage indicates a storage failure; the transaction rolled back.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"

	// ErrCodeConflict indicates another writer held the database.
	ErrCodeConflict ErrorCode = "CONCURRENCY_CONFLICT"

	// ErrCodeNotFound indicates the row id does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeNotSequenced indicates the row's sequence is NULL.
	ErrCodeNotSequenced ErrorCode = "NOT_SEQUENCED"

	// ErrCodeUnknownEntity indicates the entity is not registered.
	ErrCodeUnknownEntity ErrorCode = "UNKNOWN_ENTITY"
)

// Error implements the error interface.
func (e *SequenceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Entity != "" && e.RowID != 0 {
		msg += fmt.Sprintf(" (%s %d)", e.Entity, e.RowID)
	} else if e.Entity != "" {
		msg += fmt.Sprintf(" (%s)", e.Entity)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SequenceError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var se *SequenceError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsInvalidRank returns true if the error is an invalid rank error.
// Uses errors.As to handle wrapped errors.
func IsInvalidRank(err error) bool { return hasCode(err, ErrCodeInvalidRank) }

// IsStorageError returns true for storage failures.
func IsStorageError(err error) bool { return hasCode(err, ErrCodeStorage) }

// IsConflict returns true if another writer held the database.
func IsConflict(err error) bool { return hasCode(err, ErrCodeConflict) }

// IsNotFound returns true if the row does not exist.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsNotSequenced returns true if the row has no ordering key.
func IsNotSequenced(err error) bool { return hasCode(err, ErrCodeNotSequenced) }

// IsUnknownEntity returns true if the entity is not registered.
func IsUnknownEntity(err error) bool { return hasCode(err, ErrCodeUnknownEntity) }

// NewInvalidRankError creates a SequenceError for an unusable target rank.
func NewInvalidRankError(entity string, rowID int64, rank int, reason string) *SequenceError {
	return &SequenceError{
		Code:    ErrCodeInvalidRank,
		Message: fmt.Sprintf("rank %d: %s", rank, reason),
		Entity:  entity,
		RowID:   rowID,
		Rank:    rank,
	}
}

func newNotSequencedError(entity string, rowID int64) *SequenceError {
	return &SequenceError{
		Code:    ErrCodeNotSequenced,
		Message: "row has no ordering key",
		Entity:  entity,
		RowID:   rowID,
	}
}

func newUnknownEntityError(entity string) *SequenceError {
	return &SequenceError{
		Code:    ErrCodeUnknownEntity,
		Message: "entity is not registered",
		Entity:  entity,
	}
}

// classify turns a store error into a SequenceError. Errors that already
// are SequenceErrors pass through unchanged.
func classify(op, entity string, rowID int64, err error) error {
	if err == nil {
		return nil
	}
	var se *SequenceError
	if errors.As(err, &se) {
		return err
	}

	code := ErrCodeStorage
	switch {
	case store.IsConflict(err):
		code = ErrCodeConflict
	case errors.Is(err, store.ErrNotFound):
		code = ErrCodeNotFound
	}
	return &SequenceError{
		Code:    code,
		Message: op + " failed",
		Entity:  entity,
		RowID:   rowID,
		Err:     err,
	}
}
