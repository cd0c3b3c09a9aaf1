package chunk

import (
	"strings"
	"testing"

	"github.com/poiesic/meetvec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTranscript() *core.Transcript {
	return &core.Transcript{
		ID:           "t1",
		Title:        "Weekly Sync",
		Date:         1735689600000,
		Duration:     1800,
		Participants: []string{"ana@example.com", "bo@example.com"},
		Sentences: []core.Sentence{
			{Text: "Morning everyone.", SpeakerID: 0},
			{Text: "Let's get started.", SpeakerID: 0},
			{Text: "Sounds good.", SpeakerID: 1},
			{Text: "First item is the launch.", SpeakerID: 0},
		},
	}
}

func TestChunk_GroupsBySpeaker(t *testing.T) {
	chunker := NewChunker(DefaultMaxChunkSize, "fireflies")

	chunks, err := chunker.Chunk(sampleTranscript())
	require.NoError(t, err)
	require.Len(t, chunks, 3, "three speaker turns, three chunks")

	assert.Equal(t, "Morning everyone. Let's get started.", chunks[0].Text)
	assert.Equal(t, "Sounds good.", chunks[1].Text)
	assert.Equal(t, "First item is the launch.", chunks[2].Text)

	assert.Equal(t, "Speaker 0", chunks[0].Speaker)
	assert.Equal(t, "Speaker 1", chunks[1].Speaker)
	assert.Equal(t, "Speaker 0", chunks[2].Speaker)
}

func TestChunk_MetadataPayload(t *testing.T) {
	chunker := NewChunker(DefaultMaxChunkSize, "fireflies")

	chunks, err := chunker.Chunk(sampleTranscript())
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	meta := chunks[1].Metadata
	assert.Equal(t, "t1", meta["transcript_id"])
	assert.Equal(t, "Weekly Sync", meta["title"])
	assert.Equal(t, "Speaker 1", meta["speaker"])
	assert.Equal(t, "Speaker 0", meta["prev_speaker"])
	assert.Equal(t, "Speaker 0", meta["next_speaker"])
	assert.Equal(t, 1, meta["chunk_index"])
	assert.Equal(t, 3, meta["total_chunks"])
	assert.Equal(t, "fireflies", meta["source"])

	// Edge blocks have no neighbor.
	assert.Equal(t, "None", chunks[0].Metadata["prev_speaker"])
	assert.Equal(t, "None", chunks[2].Metadata["next_speaker"])
}

func TestChunk_IndicesAndTotals(t *testing.T) {
	chunker := NewChunker(DefaultMaxChunkSize, "fireflies")

	chunks, err := chunker.Chunk(sampleTranscript())
	require.NoError(t, err)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, len(chunks), c.Total)
		require.NoError(t, core.ValidateChunk(&c))
	}
}

func TestChunk_SplitsLongBlockOnSentences(t *testing.T) {
	transcript := &core.Transcript{
		ID: "t1",
		Sentences: []core.Sentence{
			{Text: strings.Repeat("a", 40) + ".", SpeakerID: 0},
			{Text: strings.Repeat("b", 40) + ".", SpeakerID: 0},
			{Text: strings.Repeat("c", 40) + ".", SpeakerID: 0},
		},
	}

	chunker := NewChunker(90, "fireflies")
	chunks, err := chunker.Chunk(transcript)
	require.NoError(t, err)

	require.Len(t, chunks, 2, "three 41-char sentences at limit 90 pack as 2+1")
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 90)
		assert.Equal(t, "Speaker 0", c.Speaker, "split pieces keep the block speaker")
	}
}

func TestChunk_OversizedSentenceSplitsOnWords(t *testing.T) {
	words := make([]string, 30)
	for i := range words {
		words[i] = "word"
	}
	transcript := &core.Transcript{
		ID:        "t1",
		Sentences: []core.Sentence{{Text: strings.Join(words, " "), SpeakerID: 0}},
	}

	chunker := NewChunker(25, "fireflies")
	chunks, err := chunker.Chunk(transcript)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 25)
		for _, w := range strings.Fields(c.Text) {
			assert.Equal(t, "word", w, "words must never be split")
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	chunker := NewChunker(64, "fireflies")

	first, err := chunker.Chunk(sampleTranscript())
	require.NoError(t, err)
	second, err := chunker.Chunk(sampleTranscript())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text, "chunk boundaries must be byte-identical across runs")
		assert.Equal(t, first[i].Index, second[i].Index)
	}
}

func TestChunk_EmptyTranscript(t *testing.T) {
	chunker := NewChunker(DefaultMaxChunkSize, "fireflies")

	chunks, err := chunker.Chunk(&core.Transcript{ID: "t1"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_InvalidTranscript(t *testing.T) {
	chunker := NewChunker(DefaultMaxChunkSize, "fireflies")

	_, err := chunker.Chunk(nil)
	assert.ErrorIs(t, err, core.ErrInvalidTranscript)

	_, err = chunker.Chunk(&core.Transcript{})
	assert.ErrorIs(t, err, core.ErrEmptyTranscriptID)
}

func TestChunk_SkipsBlankSentences(t *testing.T) {
	transcript := &core.Transcript{
		ID: "t1",
		Sentences: []core.Sentence{
			{Text: "  ", SpeakerID: 0},
			{Text: "Real content.", SpeakerID: 0},
		},
	}

	chunker := NewChunker(DefaultMaxChunkSize, "fireflies")
	chunks, err := chunker.Chunk(transcript)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Real content.", chunks[0].Text)
}
