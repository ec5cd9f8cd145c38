package db

import "errors"

var (
	// ErrNotFound is returned when a record does not exist within the given
	// company. Lookups that match a record owned by another company also
	// return ErrNotFound: tenant isolation never reveals existence.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidID is returned for malformed object ids.
	ErrInvalidID = errors.New("invalid id")
)
