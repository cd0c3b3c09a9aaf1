package query

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/meetvec/ai/mock"
	"github.com/poiesic/meetvec/core"
	"github.com/poiesic/meetvec/pinecone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	matches      []core.QueryMatch
	stats        *pinecone.IndexStats
	queryErr     error
	gotNamespace string
	gotVector    []float32
	gotTopK      int
}

func (f *fakeIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]core.QueryMatch, error) {
	f.gotNamespace = namespace
	f.gotVector = vector
	f.gotTopK = topK
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeIndex) DescribeIndexStats(ctx context.Context) (*pinecone.IndexStats, error) {
	return f.stats, nil
}

func TestNewSearcher_Validation(t *testing.T) {
	_, err := NewSearcher(nil, &fakeIndex{})
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewSearcher(mock.NewMockEmbedder(), nil)
	assert.ErrorIs(t, err, ErrIndexRequired)
}

func TestSearch_EmbedsOnceAndQueries(t *testing.T) {
	index := &fakeIndex{matches: []core.QueryMatch{
		{ID: "fireflies_t1_0", Score: 0.93},
		{ID: "fireflies_t2_1", Score: 0.85},
	}}
	embedder := mock.NewMockEmbedder()

	searcher, err := NewSearcher(embedder, index)
	require.NoError(t, err)

	matches, err := searcher.Search(context.Background(), "what did we decide about pricing", "fireflies", 3)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "fireflies_t1_0", matches[0].ID)
	assert.Equal(t, 1, embedder.CallCount(), "query text is embedded exactly once")
	assert.Equal(t, "fireflies", index.gotNamespace)
	assert.Equal(t, 3, index.gotTopK)
	assert.NotEmpty(t, index.gotVector)
}

func TestSearch_DefaultTopK(t *testing.T) {
	index := &fakeIndex{}
	searcher, err := NewSearcher(mock.NewMockEmbedder(), index)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "anything", "ns", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, index.gotTopK)
}

func TestSearch_EmptyQuery(t *testing.T) {
	searcher, err := NewSearcher(mock.NewMockEmbedder(), &fakeIndex{})
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "   ", "ns", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_IndexErrorPropagates(t *testing.T) {
	wantErr := errors.New("index unavailable")
	searcher, err := NewSearcher(mock.NewMockEmbedder(), &fakeIndex{queryErr: wantErr})
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "anything", "ns", 5)
	assert.ErrorIs(t, err, wantErr)
}

func TestFormatMatches(t *testing.T) {
	out := FormatMatches([]core.QueryMatch{
		{
			ID:    "fireflies_t1_2",
			Score: 0.9123,
			Metadata: core.Metadata{
				"title":          "Weekly sync",
				"transcript_id":  "t1",
				"speaker":        "Ana",
				"chunk_index":    float64(2),
				"total_chunks":   float64(5),
				"recording_date": "2026-04-24T10:00:00Z",
				"content":        "We agreed to ship on Friday.",
			},
		},
		{ID: "fireflies_t2_0", Score: 0.8001},
	})

	assert.Contains(t, out, "--- Result 1 (score: 0.9123) ---")
	assert.Contains(t, out, "Title: Weekly sync")
	assert.Contains(t, out, "Transcript: t1")
	assert.Contains(t, out, "Speaker: Ana")
	assert.Contains(t, out, "Chunk: 2 of 5", "chunk index stays 0-based as stored")
	assert.Contains(t, out, "Text: We agreed to ship on Friday.")
	assert.Contains(t, out, "--- Result 2 (score: 0.8001) ---")
}

func TestFormatMatches_Empty(t *testing.T) {
	assert.Equal(t, "No results found.\n", FormatMatches(nil))
}

func TestFormatStats(t *testing.T) {
	out := FormatStats(&pinecone.IndexStats{
		Dimension:        1536,
		TotalVectorCount: 1234,
		Namespaces: map[string]pinecone.NamespaceSummary{
			"fireflies": {VectorCount: 1200},
			"":          {VectorCount: 34},
		},
	})

	assert.Contains(t, out, "Dimension: 1536")
	assert.Contains(t, out, "Total vectors: 1234")
	assert.Contains(t, out, "fireflies: 1200 vectors")
	assert.Contains(t, out, "(default): 34 vectors")
}
