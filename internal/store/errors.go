package store

import "errors"

var (
	// ErrInvalidKey is returned when a caller supplies an empty key.
	ErrInvalidKey = errors.New("store: invalid empty key")
)
