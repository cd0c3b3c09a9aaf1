package storage

import "errors"

var (
	// ErrNotFound indicates the requested transcript is not in the cache.
	ErrNotFound = errors.New("transcript not found in cache")

	// ErrStorageClosed indicates an operation on a closed cache.
	ErrStorageClosed = errors.New("storage is closed")
)
