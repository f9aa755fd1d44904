package service

import "errors"

var (
	// ErrNotReady is returned by entry points while the dataset is loading.
	ErrNotReady = errors.New("dataset not loaded yet")
	// ErrNotStarted is returned before Start has been called.
	ErrNotStarted = errors.New("service not started")
	// ErrNoLoader is returned by Start without a dataset loader.
	ErrNoLoader = errors.New("no dataset loader configured")
)
