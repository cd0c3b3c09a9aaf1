package fireflies

import "errors"

var (
	// ErrMissingAPIKey indicates the client was constructed without credentials.
	ErrMissingAPIKey = errors.New("fireflies: missing API key")

	// ErrTranscriptNotFound indicates the requested transcript id no longer
	// exists upstream. Callers should skip the item and continue.
	ErrTranscriptNotFound = errors.New("fireflies: transcript not found")

	// ErrRateLimited indicates the upstream throttled the request.
	// Callers must back off and retry.
	ErrRateLimited = errors.New("fireflies: rate limited")
)
