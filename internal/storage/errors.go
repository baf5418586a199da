package storage

import "errors"

var (
	// ErrStorageUnavailable means the medium could not be opened. It is fatal.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotInitialized means the engine was used before a successful Open.
	ErrNotInitialized = errors.New("storage not initialized")

	// ErrWriteFailed wraps medium errors on insert, update, delete and commit.
	// Callers may retry.
	ErrWriteFailed = errors.New("storage write failed")

	// ErrReadOnly is returned for writes attempted inside a Read unit.
	ErrReadOnly = errors.New("write in read-only unit")

	ErrNotFound     = errors.New("record not found")
	ErrUnknownIndex = errors.New("unknown index")
)
