package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/poiesic/meetvec/ai/mock"
	"github.com/poiesic/meetvec/core"
	"github.com/poiesic/meetvec/pinecone"
	"github.com/poiesic/meetvec/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIndex implements query.Index for exercising the query command flow.
type stubIndex struct {
	stats   *pinecone.IndexStats
	matches []core.QueryMatch
	queried bool
}

func (s *stubIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]core.QueryMatch, error) {
	s.queried = true
	return s.matches, nil
}

func (s *stubIndex) DescribeIndexStats(ctx context.Context) (*pinecone.IndexStats, error) {
	return s.stats, nil
}

func newStubSearcher(t *testing.T, index *stubIndex) *query.Searcher {
	t.Helper()

	searcher, err := query.NewSearcher(mock.NewMockEmbedder(), index)
	require.NoError(t, err)
	return searcher
}

func TestRunQuery_DescribeIsPreflight(t *testing.T) {
	index := &stubIndex{
		stats: &pinecone.IndexStats{Dimension: 1536, TotalVectorCount: 42},
		matches: []core.QueryMatch{
			{ID: "fireflies_t1_0", Score: 0.91, Metadata: core.Metadata{"content": "We shipped it."}},
		},
	}

	var out bytes.Buffer
	err := runQuery(context.Background(), newStubSearcher(t, index), true,
		"what shipped", "fireflies", 5, &out)
	require.NoError(t, err)

	assert.True(t, index.queried, "describe-index must not replace the search")
	assert.Contains(t, out.String(), "Total vectors: 42")
	assert.Contains(t, out.String(), "--- Result 1 (score: 0.9100) ---")
	assert.Contains(t, out.String(), "Text: We shipped it.")
}

func TestRunQuery_WithoutDescribe(t *testing.T) {
	index := &stubIndex{
		stats:   &pinecone.IndexStats{TotalVectorCount: 42},
		matches: []core.QueryMatch{{ID: "fireflies_t1_0", Score: 0.8}},
	}

	var out bytes.Buffer
	err := runQuery(context.Background(), newStubSearcher(t, index), false,
		"anything", "fireflies", 5, &out)
	require.NoError(t, err)

	assert.True(t, index.queried)
	assert.NotContains(t, out.String(), "Total vectors", "stats print only when asked for")
}

func TestParseDateFilter_Empty(t *testing.T) {
	filter, err := parseDateFilter("", "")
	require.NoError(t, err)
	assert.Nil(t, filter)
}

func TestParseDateFilter_StartOnly(t *testing.T) {
	filter, err := parseDateFilter("2026-04-01", "")
	require.NoError(t, err)
	require.NotNil(t, filter)

	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), filter.Start)
	assert.True(t, filter.End.IsZero())
}

func TestParseDateFilter_EndIsInclusive(t *testing.T) {
	filter, err := parseDateFilter("", "2026-04-30")
	require.NoError(t, err)
	require.NotNil(t, filter)

	lastMoment := time.Date(2026, 4, 30, 23, 59, 59, 999999999, time.UTC)
	assert.Equal(t, lastMoment, filter.End)
}

func TestParseDateFilter_InvalidFormat(t *testing.T) {
	_, err := parseDateFilter("04/01/2026", "")
	assert.ErrorContains(t, err, "start-date")

	_, err = parseDateFilter("", "not-a-date")
	assert.ErrorContains(t, err, "end-date")
}

func TestParseDateFilter_EndBeforeStart(t *testing.T) {
	_, err := parseDateFilter("2026-05-01", "2026-04-01")
	assert.ErrorContains(t, err, "before start-date")
}
