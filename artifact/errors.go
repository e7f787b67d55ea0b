package artifact

import "errors"

var (
	// ErrNotFound is returned when an artifact for the given session / id pair
	// does not exist in the underlying store.
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidID is returned for ids that cannot be used as a storage key.
	ErrInvalidID = errors.New("invalid artifact id")
)
