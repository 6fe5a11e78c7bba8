package domain

import "errors"

// Sentinel errors shared across entities. Entity-specific sentinels live in
// their entity's file.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller is not allowed to act on the entity.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned when the request is invalid.
	ErrInvalidInput = errors.New("invalid input")
)
