package testutil

import "fmt"

// FixedTokenGenerator returns the same operation token every time.
//
// Useful when a test asserts on journal contents but not on which move
// produced which record. Safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a generator returning token.
// If token is empty, Generate returns "test-move-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-move-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements engine.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}

// SequentialTokenGenerator numbers tokens: "<prefix>-0001", "<prefix>-0002", ...
//
// It never runs out, and a fresh generator per run gives a rerun of the same
// scenario identical tokens (golden snapshots).
type SequentialTokenGenerator struct {
	prefix  string
	counter *Counter
}

// NewSequentialTokenGenerator creates a generator with the given prefix
// (default "move").
func NewSequentialTokenGenerator(prefix string) *SequentialTokenGenerator {
	if prefix == "" {
		prefix = "move"
	}
	return &SequentialTokenGenerator{prefix: prefix, counter: NewCounter()}
}

// Generate returns the next numbered token.
func (g *SequentialTokenGenerator) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.counter.Next())
}
