package core

import "fmt"

// Metadata is an opaque key/value mapping attached to transcripts and chunks.
// Values stay as `any` so that arbitrary upstream JSON payloads (strings,
// numbers, string lists) survive a round trip unchanged.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata mapping.
// Returns nil for nil metadata.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Sentence is a single utterance within a transcript.
type Sentence struct {
	Text      string
	SpeakerID int
	StartTime float64 // Seconds from recording start
	EndTime   float64
}

// Transcript is one recorded meeting's metadata and full text, keyed by the
// identifier assigned upstream. Immutable once fetched.
type Transcript struct {
	ID           string
	Title        string
	Date         int64   // Recording time in Unix milliseconds, as reported upstream
	Duration     float64 // Seconds
	Participants []string
	Sentences    []Sentence
	Metadata     Metadata
}

// Chunk is a bounded-size text segment derived from exactly one transcript.
// Chunks are never mutated after creation.
type Chunk struct {
	TranscriptID string
	Index        int // Sequence index within the transcript
	Total        int // Total chunks produced from the transcript
	Speaker      string
	Text         string
	Metadata     Metadata
}

// VectorID returns the deterministic vector identifier for this chunk.
// Identical input always yields the identical id, so re-upserting a
// reprocessed chunk overwrites the old record instead of duplicating it.
func (c *Chunk) VectorID(prefix string) string {
	return fmt.Sprintf("%s_%s_%d", prefix, c.TranscriptID, c.Index)
}

// VectorRecord is an embedded chunk ready for upsert, and the shape of one
// line in the audit export file.
type VectorRecord struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
	Text     string    `json:"text"`
}

// QueryMatch is one similarity search result from the vector index,
// with the similarity score assigned by the index (higher is better).
type QueryMatch struct {
	ID       string
	Score    float64
	Metadata Metadata
}
