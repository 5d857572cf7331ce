package engine

import "github.com/google/uuid"

// TokenGenerator produces operation tokens. Each reposition gets one; it
// appears in logs and in the move journal. testutil has deterministic
// implementations for tests.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 operation tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so journal tokens
// sort by creation time.
// Safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
