package controller

import "github.com/google/uuid"

// GenerationGenerator produces generation tokens. Tokens must be unique per
// call.
type GenerationGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 generation tokens.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
