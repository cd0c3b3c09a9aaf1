package export

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrSourceRequired indicates NewExporter was called without a source client.
	ErrSourceRequired = errors.New("source client is required")

	// ErrChunkerRequired indicates NewExporter was called without a chunker.
	ErrChunkerRequired = errors.New("chunker is required")

	// ErrEmbedderRequired indicates NewExporter was called without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrCheckpointsRequired indicates NewExporter was called without a checkpoint set.
	ErrCheckpointsRequired = errors.New("checkpoint set is required")
)
