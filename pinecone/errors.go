package pinecone

import "errors"

var (
	// ErrMissingAPIKey indicates the client was constructed without credentials.
	ErrMissingAPIKey = errors.New("pinecone: missing API key")

	// ErrMissingIndexName indicates no index name was configured.
	ErrMissingIndexName = errors.New("pinecone: missing index name")

	// ErrIndexNotFound indicates the configured index does not exist.
	ErrIndexNotFound = errors.New("pinecone: index not found")
)
