// Package mock provides test doubles for the ai package interfaces.
// The mock embedder is deterministic: identical text always yields the
// identical vector, with no network access.
package mock
