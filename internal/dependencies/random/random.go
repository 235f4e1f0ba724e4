package random

import "github.com/google/uuid"

// Random produces identifiers. It is mocked in tests so outbound request
// ids are predictable.
type Random interface {
	// NewID returns a fresh unique identifier
	NewID() string
}

// Generator implements Random with UUIDv4 ids
type Generator struct{}

// New creates a new Generator
func New() Generator {
	return Generator{}
}

// NewID returns a random UUID in its canonical string form
func (Generator) NewID() string {
	return uuid.NewString()
}
