package query

import "errors"

var (
	// ErrEmbedderRequired indicates NewSearcher was called without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrIndexRequired indicates NewSearcher was called without an index.
	ErrIndexRequired = errors.New("index is required")

	// ErrEmptyQuery indicates a search with no query text.
	ErrEmptyQuery = errors.New("query text must not be empty")
)
