package selection

import "errors"

var (
	// ErrNotFound is returned when a searched or picked id is not in the dataset.
	ErrNotFound = errors.New("entity not found")
	// ErrEmptyQuery is returned when a search query is blank.
	ErrEmptyQuery = errors.New("empty search query")
	// ErrInvalidMode is returned for an unknown selection mode.
	ErrInvalidMode = errors.New("invalid selection mode")
)

// NotFoundNotice is the blocking notice raised for a failed search.
const NotFoundNotice = "Entity not found/ analysed"
