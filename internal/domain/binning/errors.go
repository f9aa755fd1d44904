package binning

import "errors"

var (
	// ErrNoData is returned when no object defines the requested metric.
	ErrNoData = errors.New("no object defines the metric")
	// ErrInvalidBinCount is returned when fewer than one bin is requested.
	ErrInvalidBinCount = errors.New("bin count must be at least 1")
)
