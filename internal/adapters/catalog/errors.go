package catalog

import "errors"

var (
	// ErrDatasetLoad wraps every failure to obtain the dataset.
	ErrDatasetLoad = errors.New("dataset load failed")
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrNoAssets is returned when the catalog lists no complete asset.
	ErrNoAssets = errors.New("catalog has no complete assets")
	// ErrTooLarge is returned when a response exceeds the size limit.
	ErrTooLarge = errors.New("response exceeds size limit")
)
