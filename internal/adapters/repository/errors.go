package repository

import "errors"

// Sentinel kinds for dataset store errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrDuplicateID = errors.New("duplicate entity id")
	ErrEmptyID     = errors.New("entity id must not be empty")
)
