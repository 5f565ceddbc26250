package services

import "errors"

var (
	// ErrNotFound is returned when a record is absent from the store or the provider.
	ErrNotFound = errors.New("not found")
	// ErrProviderUnavailable wraps transport, HTTP and quota failures from the provider.
	ErrProviderUnavailable = errors.New("metadata provider unavailable")
	// ErrItemExists is returned by InsertIfAbsent when the external ID is already stored.
	ErrItemExists = errors.New("item already exists")
)
