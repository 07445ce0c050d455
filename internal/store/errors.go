package store

import "errors"

var (
	// ErrNotFound is returned when no entity exists under (collection, id).
	ErrNotFound = errors.New("store: entity not found")

	// ErrAlreadyExists is returned when creating an entity whose id is taken.
	ErrAlreadyExists = errors.New("store: entity already exists")

	// ErrConcurrencyConflict is returned when an update carries a stale etag.
	ErrConcurrencyConflict = errors.New("store: entity was modified concurrently")
)
