package models

import "errors"

var (
	// ErrNotFound marks a record that no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a write rejected by a business rule.
	ErrConflict = errors.New("conflict")
)
