package worker

import "errors"

// Sentinel kinds for loop errors.
var (
	ErrStopped = errors.New("event loop stopped")
	ErrPanic   = errors.New("event handler panicked")
)
