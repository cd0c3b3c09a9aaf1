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


// Package fireflies wraps the Fireflies.ai GraphQL API: paginated listing of
// transcript identifiers and per-id transcript fetches, with a caller-visible
// pacing delay between consecutive calls to stay under upstream rate limits.
package fireflies

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
	// DefaultPageSize is the maximum page size accepted by the transcripts query.
	DefaultPageSize = 50

	defaultBaseURL = "https://api.fireflies.ai/graphql"
)

// Config holds configuration for the Fireflies client.
type Config struct {
	// APIKey authenticates against the GraphQL endpoint. Required.
	APIKey string

	// BaseURL overrides the GraphQL endpoint. Used by tests.
	BaseURL string

	// Pacing is the minimum delay between consecutive API calls.
	// This is a plain sleep, not a token bucket. Default 1s.
	Pacing time.Duration

	// PageSize is the listing page size. Default DefaultPageSize.
	PageSize int

	// Timeout bounds each HTTP request. Default 30s.
	Timeout time.Duration
}

// Cursor is an opaque listing position. The zero value starts from the
// beginning; a nil *Cursor from ListTranscripts means the listing is exhausted.
type Cursor int

// ListFilter restricts the transcript listing.
// The upstream query has no date arguments, so filtering happens client-side
// against the reported recording time, same as the original export tooling.
type ListFilter struct {
	Start time.Time // Inclusive; zero means unbounded
	End   time.Time // Inclusive; zero means unbounded
}

// Client calls the Fireflies GraphQL API.
type Client struct {
	cfg      Config
	http     *http.Client
	logger   *slog.Logger
	lastCall time.Time
}

// NewClient creates a Fireflies client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Pacing < 0 {
		cfg.Pacing = 0
	} else if cfg.Pacing == 0 {
		cfg.Pacing = time.Second
	}
	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default().With("component", "fireflies-client"),
	}, nil
}

const listQuery = `
query ListTranscripts($limit: Int!, $skip: Int!) {
    transcripts(limit: $limit, skip: $skip) {
        id
        title
        date
    }
}`

const fetchQuery = `
query GetTranscript($id: String!) {
    transcript(id: $id) {
        id
        title
        date
        duration
        participants
        sentences {
            text
            speaker_id
            start_time
            end_time
        }
    }
}`

type transcriptSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  int64  `json:"date"`
}

type transcriptDetail struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Date         int64    `json:"date"`
	Duration     float64  `json:"duration"`
	Participants []string `json:"participants"`
	Sentences    []struct {
		Text      string  `json:"text"`
		SpeakerID int     `json:"speaker_id"`
		StartTime float64 `json:"start_time"`
		EndTime   float64 `json:"end_time"`
	} `json:"sentences"`
}

// ListTranscripts returns one page of transcript identifiers in listing order.
// A nil next cursor means the listing is exhausted. The filter, if non-nil,
// drops identifiers whose recording time falls outside the range; dropped
// identifiers do not shorten the page walk.
func (c *Client) ListTranscripts(ctx context.Context, cursor Cursor, filter *ListFilter) ([]string, *Cursor, error) {
	var payload struct {
		Transcripts []transcriptSummary `json:"transcripts"`
	}

	vars := map[string]any{
		"limit": c.cfg.PageSize,
		"skip":  int(cursor),
	}
	if err := c.do(ctx, listQuery, vars, &payload); err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(payload.Transcripts))
	for _, t := range payload.Transcripts {
		if t.ID == "" {
			continue
		}
		if filter != nil && !filter.matches(t.Date) {
			continue
		}
		ids = append(ids, t.ID)
	}

	c.logger.Debug("listed transcripts page", "skip", int(cursor), "returned", len(payload.Transcripts), "kept", len(ids))

	// A short page means the listing is exhausted.
	if len(payload.Transcripts) < c.cfg.PageSize {
		return ids, nil, nil
	}
	next := cursor + Cursor(c.cfg.PageSize)
	return ids, &next, nil
}

// FetchTranscript fetches the full transcript body for one identifier.
// Returns ErrTranscriptNotFound if the id no longer exists upstream and
// ErrRateLimited if the upstream throttles the call.
func (c *Client) FetchTranscript(ctx context.Context, id string) (*core.Transcript, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrTranscriptNotFound)
	}

	var payload struct {
		Transcript *transcriptDetail `json:"transcript"`
	}
	vars := map[string]any{"id": id}
	if err := c.do(ctx, fetchQuery, vars, &payload); err != nil {
		return nil, err
	}

	if payload.Transcript == nil || payload.Transcript.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrTranscriptNotFound, id)
	}

	d := payload.Transcript
	t := &core.Transcript{
		ID:           d.ID,
		Title:        d.Title,
		Date:         d.Date,
		Duration:     d.Duration,
		Participants: d.Participants,
		Sentences:    make([]core.Sentence, len(d.Sentences)),
	}
	for i, s := range d.Sentences {
		t.Sentences[i] = core.Sentence{
			Text:      s.Text,
			SpeakerID: s.SpeakerID,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		}
	}
	return t, nil
}

func (f *ListFilter) matches(dateMillis int64) bool {
	if f == nil {
		return true
	}
	ts := time.UnixMilli(dateMillis)
	if !f.Start.IsZero() && ts.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && ts.After(f.End) {
		return false
	}
	return true
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// do executes one GraphQL request after honoring the pacing delay.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	if err := c.pace(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: http 429", ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fireflies http %d: %s", resp.StatusCode, string(raw))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("fireflies decode: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return c.mapGraphQLError(envelope.Errors)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("fireflies decode: %w", err)
		}
	}
	return nil
}

func (c *Client) mapGraphQLError(errs []graphqlError) error {
	first := errs[0]
	code := strings.ToLower(first.Code)
	msg := strings.ToLower(first.Message)
	switch {
	case code == "object_not_found" || strings.Contains(msg, "not found"):
		return fmt.Errorf("%w: %s", ErrTranscriptNotFound, first.Message)
	case code == "too_many_requests" || strings.Contains(msg, "rate limit"):
		return fmt.Errorf("%w: %s", ErrRateLimited, first.Message)
	default:
		return fmt.Errorf("fireflies graphql: %s", first.Message)
	}
}

// pace sleeps until at least the configured pacing interval has passed since
// the previous call. The sleep aborts if the context is canceled.
func (c *Client) pace(ctx context.Context) error {
	if c.cfg.Pacing <= 0 {
		return nil
	}

	now := time.Now()
	if !c.lastCall.IsZero() {
		if wait := c.cfg.Pacing - now.Sub(c.lastCall); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	c.lastCall = time.Now()
	return nil
}
