package czml

import "errors"

var (
	// ErrInvalidDocument is returned when the input is not a CZML packet array.
	ErrInvalidDocument = errors.New("invalid czml document")
	// ErrInvalidProperty is returned for a numeric property that cannot be decoded.
	ErrInvalidProperty = errors.New("invalid czml property")
)
