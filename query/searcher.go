// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package query performs semantic search over previously exported
// transcript chunks: embed the query text once, run a top-k similarity
// search against the vector index, and format the matches for a human.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/meetvec/ai"
	"github.com/poiesic/meetvec/core"
	"github.com/poiesic/meetvec/pinecone"
)

// DefaultTopK is the number of matches returned when the caller does
// not ask for a specific count.
const DefaultTopK = 5

// Index is the slice of the vector index the searcher needs.
type Index interface {
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]core.QueryMatch, error)
	DescribeIndexStats(ctx context.Context) (*pinecone.IndexStats, error)
}

// Searcher embeds query text and searches the vector index.
type Searcher struct {
	embedder ai.Embedder
	index    Index
	logger   *slog.Logger
}

// NewSearcher creates a searcher over the given embedder and index.
func NewSearcher(embedder ai.Embedder, index Index) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	return &Searcher{
		embedder: embedder,
		index:    index,
		logger:   slog.Default().With("component", "searcher"),
	}, nil
}

// Search embeds text and returns the topK closest chunks from the given
// namespace. topK <= 0 means DefaultTopK.
func (s *Searcher) Search(ctx context.Context, text, namespace string, topK int) ([]core.QueryMatch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.index.Query(ctx, namespace, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	s.logger.Debug("query completed", "namespace", namespace, "topK", topK, "matches", len(matches))
	return matches, nil
}

// Describe reports index-wide vector counts for diagnostics.
func (s *Searcher) Describe(ctx context.Context) (*pinecone.IndexStats, error) {
	return s.index.DescribeIndexStats(ctx)
}

// FormatMatches renders matches for terminal output, best match first.
func FormatMatches(matches []core.QueryMatch) string {
	if len(matches) == 0 {
		return "No results found.\n"
	}

	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "--- Result %d (score: %.4f) ---\n", i+1, m.Score)

		if title := metaString(m.Metadata, "title"); title != "" {
			fmt.Fprintf(&b, "Title: %s\n", title)
		}
		if tid := metaString(m.Metadata, "transcript_id"); tid != "" {
			fmt.Fprintf(&b, "Transcript: %s\n", tid)
		}
		if speaker := metaString(m.Metadata, "speaker"); speaker != "" {
			fmt.Fprintf(&b, "Speaker: %s\n", speaker)
		}
		// chunk_index is reported 0-based, as stored
		if total, ok := metaInt(m.Metadata, "total_chunks"); ok {
			index, _ := metaInt(m.Metadata, "chunk_index")
			fmt.Fprintf(&b, "Chunk: %d of %d\n", index, total)
		}
		if date := metaString(m.Metadata, "recording_date"); date != "" {
			fmt.Fprintf(&b, "Date: %s\n", date)
		}
		if content := metaString(m.Metadata, "content"); content != "" {
			fmt.Fprintf(&b, "Text: %s\n", content)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatStats renders index statistics for terminal output.
func FormatStats(stats *pinecone.IndexStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dimension: %d\n", stats.Dimension)
	fmt.Fprintf(&b, "Total vectors: %d\n", stats.TotalVectorCount)

	if len(stats.Namespaces) > 0 {
		names := make([]string, 0, len(stats.Namespaces))
		for name := range stats.Namespaces {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("Namespaces:\n")
		for _, name := range names {
			label := name
			if label == "" {
				label = "(default)"
			}
			fmt.Fprintf(&b, "  %s: %d vectors\n", label, stats.Namespaces[name].VectorCount)
		}
	}
	return b.String()
}

// metaString reads a string value from match metadata.
func metaString(m core.Metadata, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// metaInt reads a numeric value from match metadata. JSON decoding
// leaves numbers as float64.
func metaInt(m core.Metadata, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
