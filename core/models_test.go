package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkVectorID_Deterministic(t *testing.T) {
	chunk := &Chunk{TranscriptID: "abc123", Index: 4, Total: 7}

	id1 := chunk.VectorID("fireflies")
	id2 := chunk.VectorID("fireflies")

	assert.Equal(t, "fireflies_abc123_4", id1)
	assert.Equal(t, id1, id2, "vector id must be stable across calls")
}

func TestChunkVectorID_PrefixSeparatesSources(t *testing.T) {
	chunk := &Chunk{TranscriptID: "abc123", Index: 0, Total: 1}

	assert.NotEqual(t, chunk.VectorID("fireflies"), chunk.VectorID("zoom"))
}

func TestMetadataClone(t *testing.T) {
	meta := Metadata{
		"title":        "Weekly Sync",
		"chunk_index":  3,
		"participants": []string{"ana", "bo"},
	}

	clone := meta.Clone()
	require.Equal(t, meta, clone)

	clone["title"] = "changed"
	assert.Equal(t, "Weekly Sync", meta["title"], "clone must not alias the original")
}

func TestMetadataClone_Nil(t *testing.T) {
	var meta Metadata
	assert.Nil(t, meta.Clone())
}

func TestVectorRecord_JSONShape(t *testing.T) {
	record := VectorRecord{
		ID:     "fireflies_t1_0",
		Values: []float32{0.5, 0.25},
		Metadata: Metadata{
			"transcript_id": "t1",
			"title":         "Kickoff",
		},
		Text: "hello world",
	}

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// The audit file contract: id, values, metadata, text.
	assert.Contains(t, decoded, "id")
	assert.Contains(t, decoded, "values")
	assert.Contains(t, decoded, "metadata")
	assert.Contains(t, decoded, "text")
	assert.Equal(t, "fireflies_t1_0", decoded["id"])
}
