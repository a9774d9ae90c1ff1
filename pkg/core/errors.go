package core

import "errors"

// Common errors.
var (
	ErrNotFound = errors.New("note not found")
	ErrEmptyID  = errors.New("note ID cannot be empty")
	ErrReadOnly = errors.New("repository is in read-only mode")
)
