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


// Package pinecone is a minimal client for the Pinecone vector index:
// control-plane index description plus data-plane upsert, similarity query
// and index stats. Upserts are idempotent per record id, so deterministic
// chunk ids make reprocessing overwrite in place.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/meetvec/core"
)

const (
	// UpsertBatchSize is the maximum number of vectors per upsert request.
	UpsertBatchSize = 100

	defaultBaseURL    = "https://api.pinecone.io"
	defaultAPIVersion = "2025-01"
)

// Config holds configuration for the Pinecone client.
type Config struct {
	// APIKey authenticates against both control and data planes. Required.
	APIKey string

	// IndexName is the target index. Required.
	IndexName string

	// IndexHost is the data-plane host for the index. If empty, it is
	// resolved once via describe_index on first use.
	IndexHost string

	// BaseURL overrides the control-plane endpoint. Used by tests.
	BaseURL string

	// APIVersion is sent as X-Pinecone-Api-Version.
	APIVersion string

	// Timeout bounds each HTTP request. Default 30s.
	Timeout time.Duration
}

// IndexDescription is the control-plane view of an index.
type IndexDescription struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

// IndexStats is the data-plane view of index contents.
type IndexStats struct {
	Dimension        int                         `json:"dimension"`
	TotalVectorCount int                         `json:"totalVectorCount"`
	Namespaces       map[string]NamespaceSummary `json:"namespaces"`
}

// NamespaceSummary reports per-namespace vector counts.
type NamespaceSummary struct {
	VectorCount int `json:"vectorCount"`
}

// Client calls the Pinecone HTTP API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	host   string // resolved data-plane host URL
}

// NewClient creates a Pinecone client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.IndexName) == "" {
		return nil, ErrMissingIndexName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default().With("component", "pinecone-client"),
		host:   normalizeHost(cfg.IndexHost),
	}, nil
}

// DescribeIndex fetches the control-plane description of the configured index.
// Returns ErrIndexNotFound if the index does not exist.
func (c *Client) DescribeIndex(ctx context.Context) (*IndexDescription, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/indexes/" + c.cfg.IndexName

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, c.cfg.IndexName)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pinecone describe_index http %d: %s", resp.StatusCode, string(raw))
	}

	var out IndexDescription
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pinecone describe_index decode: %w", err)
	}
	if out.Host == "" {
		return nil, fmt.Errorf("pinecone describe_index returned empty host for %s", c.cfg.IndexName)
	}
	return &out, nil
}

// Upsert writes records into the given namespace, batched at UpsertBatchSize.
// Upserting an existing id overwrites that record. The chunk text is copied
// into the metadata under "content" so query results can show it.
func (c *Client) Upsert(ctx context.Context, namespace string, records []core.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	host, err := c.dataHost(ctx)
	if err != nil {
		return err
	}

	for start := 0; start < len(records); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		batch := records[start:end]
		vectors := make([]wireVector, len(batch))
		for i, r := range batch {
			meta := r.Metadata.Clone()
			if meta == nil {
				meta = core.Metadata{}
			}
			meta["content"] = r.Text
			vectors[i] = wireVector{ID: r.ID, Values: r.Values, Metadata: meta}
		}

		var out upsertResponse
		err := c.doJSON(ctx, host+"/vectors/upsert", upsertRequest{
			Vectors:   vectors,
			Namespace: namespace,
		}, &out)
		if err != nil {
			return err
		}
		c.logger.Debug("upserted vectors", "namespace", namespace, "count", out.UpsertedCount)
	}

	return nil
}

// Query performs a top-k similarity search in the given namespace.
// Matches come back ordered by descending similarity score.
func (c *Client) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]core.QueryMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("pinecone: query vector required")
	}
	if topK <= 0 {
		topK = 10
	}

	host, err := c.dataHost(ctx)
	if err != nil {
		return nil, err
	}

	var out queryResponse
	err = c.doJSON(ctx, host+"/query", queryRequest{
		Namespace:       namespace,
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}, &out)
	if err != nil {
		return nil, err
	}

	matches := make([]core.QueryMatch, 0, len(out.Matches))
	for _, m := range out.Matches {
		if m.ID == "" {
			continue
		}
		matches = append(matches, core.QueryMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}

// DescribeIndexStats reports vector counts and dimension for diagnostics.
func (c *Client) DescribeIndexStats(ctx context.Context) (*IndexStats, error) {
	host, err := c.dataHost(ctx)
	if err != nil {
		return nil, err
	}

	var out IndexStats
	if err := c.doJSON(ctx, host+"/describe_index_stats", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// -------------------- wire types --------------------

type wireVector struct {
	ID       string        `json:"id"`
	Values   []float32     `json:"values"`
	Metadata core.Metadata `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []wireVector `json:"vectors"`
	Namespace string       `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount int64 `json:"upsertedCount"`
}

type queryRequest struct {
	Namespace       string    `json:"namespace,omitempty"`
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string        `json:"id"`
		Score    float64       `json:"score"`
		Metadata core.Metadata `json:"metadata,omitempty"`
	} `json:"matches"`
}

// -------------------- helpers --------------------

// dataHost returns the data-plane host URL, resolving it via describe_index
// on first use when not configured.
func (c *Client) dataHost(ctx context.Context) (string, error) {
	if c.host != "" {
		return c.host, nil
	}

	desc, err := c.DescribeIndex(ctx)
	if err != nil {
		return "", err
	}
	c.host = normalizeHost(desc.Host)
	c.logger.Debug("resolved index host via describe_index", "index", c.cfg.IndexName, "host", c.host)
	return c.host, nil
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/")
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Api-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Pinecone-Api-Version", c.cfg.APIVersion)
}

func (c *Client) doJSON(ctx context.Context, url string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, c.cfg.IndexName)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pinecone http %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("pinecone decode: %w", err)
		}
	}
	return nil
}
