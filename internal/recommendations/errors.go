package recommendations

import "errors"

var (
	// ErrNotFound indicates the id is absent or soft deleted.
	ErrNotFound = errors.New("recommendation not found")

	// ErrInvalidRelation indicates a relation outside 1..3.
	ErrInvalidRelation = errors.New("invalid relation")

	// ErrValidation indicates a malformed or missing field.
	ErrValidation = errors.New("invalid recommendation")
)
