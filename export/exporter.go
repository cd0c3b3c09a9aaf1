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


package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/meetvec/ai"
	"github.com/poiesic/meetvec/core"
	"github.com/poiesic/meetvec/fireflies"
	"github.com/poiesic/meetvec/storage"
)

// Source lists transcript identifiers and fetches full transcripts.
type Source interface {
	ListTranscripts(ctx context.Context, cursor fireflies.Cursor, filter *fireflies.ListFilter) ([]string, *fireflies.Cursor, error)
	FetchTranscript(ctx context.Context, id string) (*core.Transcript, error)
}

// Chunker splits a transcript into embeddable chunks.
type Chunker interface {
	Chunk(t *core.Transcript) ([]core.Chunk, error)
}

// Sink receives finished vector records, typically a Pinecone index.
type Sink interface {
	Upsert(ctx context.Context, namespace string, records []core.VectorRecord) error
}

// Config holds configuration for an export run.
type Config struct {
	// Namespace is the sink namespace vectors are written into
	Namespace string

	// IDPrefix is prepended to every vector id
	IDPrefix string

	// BatchSize is the number of chunk texts embedded per call
	BatchSize int

	// ReportInterval is how often to report progress (number of transcripts)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for rate-limited calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Force reprocesses transcripts even when already checkpointed
	Force bool

	// ResumeFrom skips pending transcripts until this id is reached
	ResumeFrom string

	// Filter restricts the listing by recording date
	Filter *fireflies.ListFilter
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		IDPrefix:       "fireflies",
		BatchSize:      100,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Summary reports what an export run did.
type Summary struct {
	Listed    int // transcript ids returned by the source
	Skipped   int // already checkpointed, or before the resume point
	Processed int // fully exported and checkpointed this run
	Chunks    int // vector records written for processed transcripts
	Failed    int // errored after retries; not checkpointed
	NotFound  int // vanished upstream between listing and fetch
}

// Exporter orchestrates the transcript export pipeline. Transcripts are
// processed one at a time; a failure on one is logged and counted but
// never aborts the run. A transcript is checkpointed only after every
// one of its chunks has been upserted and written to the audit file.
type Exporter struct {
	source      Source
	chunker     Chunker
	embedder    ai.Embedder
	sink        Sink
	checkpoints CheckpointSet
	config      *Config
	progress    io.Writer
	audit       *AuditWriter
	cache       storage.TranscriptCache
	logger      *slog.Logger
}

// Option configures optional exporter behavior.
type Option func(*Exporter)

// WithAudit mirrors every upserted record to the given JSONL writer.
func WithAudit(w *AuditWriter) Option {
	return func(e *Exporter) { e.audit = w }
}

// WithCache reads transcripts from the cache before hitting the source
// and stores fresh fetches back into it.
func WithCache(c storage.TranscriptCache) Option {
	return func(e *Exporter) { e.cache = c }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

// NewExporter creates an exporter. A nil sink is allowed and turns the
// run into an audit-only export. progress is where human-readable run
// output goes (typically os.Stderr).
func NewExporter(source Source, chunker Chunker, embedder ai.Embedder, sink Sink, checkpoints CheckpointSet, config *Config, progress io.Writer, opts ...Option) (*Exporter, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointsRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.IDPrefix == "" {
		config.IDPrefix = "fireflies"
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.ReportInterval <= 0 {
		config.ReportInterval = 10
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 1 * time.Second
	}

	e := &Exporter{
		source:      source,
		chunker:     chunker,
		embedder:    embedder,
		sink:        sink,
		checkpoints: checkpoints,
		config:      config,
		progress:    progress,
		logger:      slog.Default().With("component", "exporter"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes the export: list everything, drop what is already done,
// then fetch, chunk, embed, upsert and checkpoint each remaining
// transcript in order.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	ids, err := e.listAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	summary := &Summary{Listed: len(ids)}

	pending := make([]string, 0, len(ids))
	for _, id := range ids {
		if !e.config.Force && e.checkpoints.Contains(id) {
			summary.Skipped++
			continue
		}
		pending = append(pending, id)
	}

	if e.config.ResumeFrom != "" {
		pending = e.applyResume(pending, summary)
	}

	if len(pending) == 0 {
		fmt.Fprintf(e.progress, "Nothing to export (%d listed, %d already processed)\n",
			summary.Listed, summary.Skipped)
		return summary, nil
	}

	fmt.Fprintf(e.progress, "Exporting %d of %d transcripts (batch size: %d)\n",
		len(pending), summary.Listed, e.config.BatchSize)

	tracker := NewProgressTracker(e.progress, len(pending), e.config.ReportInterval)
	tracker.Start()

	for _, id := range pending {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		chunks, err := e.processOne(ctx, id)
		switch {
		case errors.Is(err, fireflies.ErrTranscriptNotFound):
			// Listed but gone by fetch time. Not checkpointed, so a
			// later run will see it again if it reappears.
			e.logger.Warn("transcript not found upstream, skipping", "id", id)
			summary.NotFound++
		case err != nil:
			e.logger.Error("transcript export failed", "id", id, "error", err)
			summary.Failed++
		default:
			if err := e.checkpoints.Add(id); err != nil {
				return summary, fmt.Errorf("failed to checkpoint %s: %w", id, err)
			}
			summary.Processed++
			summary.Chunks += chunks
		}

		tracker.Increment(1)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(e.progress, "Export complete. %d processed (%d chunks), %d skipped, %d failed, %d not found in %v\n",
		summary.Processed, summary.Chunks, summary.Skipped, summary.Failed, summary.NotFound,
		elapsed.Round(time.Second))

	return summary, nil
}

// listAll walks the paginated listing until the source reports no more
// pages.
func (e *Exporter) listAll(ctx context.Context) ([]string, error) {
	var ids []string
	cursor := fireflies.Cursor(0)
	for {
		page, next, err := e.source.ListTranscripts(ctx, cursor, e.config.Filter)
		if err != nil {
			return nil, err
		}
		ids = append(ids, page...)
		if next == nil {
			return ids, nil
		}
		cursor = *next
	}
}

// applyResume drops pending ids before the resume point. If the id is
// not pending at all, the full list is kept and a warning logged.
func (e *Exporter) applyResume(pending []string, summary *Summary) []string {
	for i, id := range pending {
		if id == e.config.ResumeFrom {
			summary.Skipped += i
			return pending[i:]
		}
	}
	e.logger.Warn("resume-from id not in pending set, processing everything",
		"resumeFrom", e.config.ResumeFrom)
	return pending
}

// processOne runs a single transcript through the pipeline and returns
// the number of chunks written.
func (e *Exporter) processOne(ctx context.Context, id string) (int, error) {
	transcript, err := e.fetch(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}

	chunks, err := e.chunker.Chunk(transcript)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		// Nothing to embed. Checkpoint anyway so reruns don't refetch.
		e.logger.Warn("transcript produced no chunks", "id", id)
		return 0, nil
	}

	records, err := e.embedChunks(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}

	if e.sink != nil {
		if err := e.sink.Upsert(ctx, e.config.Namespace, records); err != nil {
			return 0, fmt.Errorf("upsert: %w", err)
		}
	}

	if e.audit != nil {
		for _, r := range records {
			if err := e.audit.Write(r); err != nil {
				return 0, fmt.Errorf("audit: %w", err)
			}
		}
	}

	e.logger.Debug("transcript exported", "id", id, "chunks", len(chunks))
	return len(chunks), nil
}

// fetch returns the transcript for id, consulting the cache first and
// retrying rate-limited source calls with backoff.
func (e *Exporter) fetch(ctx context.Context, id string) (*core.Transcript, error) {
	if e.cache != nil {
		t, err := e.cache.Get(ctx, id)
		if err == nil {
			e.logger.Debug("transcript cache hit", "id", id)
			return t, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn("transcript cache read failed", "id", id, "error", err)
		}
	}

	var transcript *core.Transcript
	err := RetryWithBackoff(ctx, func() error {
		t, err := e.source.FetchTranscript(ctx, id)
		if err != nil {
			if errors.Is(err, fireflies.ErrTranscriptNotFound) {
				return Permanent(err)
			}
			return err
		}
		transcript = t
		return nil
	}, e.config.MaxRetries, e.config.RetryDelay)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Put(ctx, transcript); err != nil {
			e.logger.Warn("transcript cache write failed", "id", id, "error", err)
		}
	}
	return transcript, nil
}

// embedChunks embeds chunk texts in batches and pairs each chunk with
// its vector, preserving order.
func (e *Exporter) embedChunks(ctx context.Context, chunks []core.Chunk) ([]core.VectorRecord, error) {
	records := make([]core.VectorRecord, 0, len(chunks))

	for start := 0; start < len(chunks); start += e.config.BatchSize {
		end := start + e.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		var vectors [][]float32
		err := RetryWithBackoff(ctx, func() error {
			v, err := e.embedder.EmbedTexts(ctx, texts)
			if err != nil {
				return err
			}
			if len(v) != len(texts) {
				return Permanent(fmt.Errorf("embedder returned %d vectors for %d texts", len(v), len(texts)))
			}
			vectors = v
			return nil
		}, e.config.MaxRetries, e.config.RetryDelay)
		if err != nil {
			return nil, err
		}

		for i, c := range batch {
			records = append(records, core.VectorRecord{
				ID:       c.VectorID(e.config.IDPrefix),
				Values:   vectors[i],
				Metadata: c.Metadata,
				Text:     c.Text,
			})
		}
	}

	return records, nil
}
