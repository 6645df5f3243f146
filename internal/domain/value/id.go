package value

import "github.com/google/uuid"

// NewID returns an opaque unique identifier.
func NewID() string {
	return uuid.New().String()
}
