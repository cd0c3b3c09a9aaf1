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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/meetvec/ai"
	"github.com/poiesic/meetvec/ai/openai"
	"github.com/poiesic/meetvec/chunk"
	"github.com/poiesic/meetvec/export"
	"github.com/poiesic/meetvec/fireflies"
	"github.com/poiesic/meetvec/pinecone"
	"github.com/poiesic/meetvec/query"
	"github.com/poiesic/meetvec/storage/badger"
)

const defaultIndexName = "conversation-archive"

func main() {
	app := &cli.App{
		Name:  "meetvec",
		Usage: "Export meeting transcripts into a vector index and search them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "Fetch transcripts, embed them in chunks and upsert into the index",
				Action: exportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "namespace",
						Aliases: []string{"n"},
						Usage:   "Index namespace to upsert into (empty writes the export file only)",
						Value:   "fireflies",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "JSONL export file mirroring every upserted vector",
						Value:   "fireflies_export.jsonl",
					},
					&cli.StringFlag{
						Name:  "checkpoint-file",
						Usage: "File tracking fully exported transcript ids",
						Value: "processed_transcripts.txt",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Reprocess transcripts even when already checkpointed",
					},
					&cli.StringFlag{
						Name:  "resume-from",
						Usage: "Skip pending transcripts until this id is reached",
					},
					&cli.StringFlag{
						Name:  "start-date",
						Usage: "Only export meetings recorded on or after this date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "end-date",
						Usage: "Only export meetings recorded on or before this date (YYYY-MM-DD)",
					},
					&cli.DurationFlag{
						Name:  "rate-limit-pause",
						Usage: "Minimum delay between source API calls",
						Value: 1 * time.Second,
					},
					&cli.StringFlag{
						Name:  "id-prefix",
						Usage: "Prefix for vector ids",
						Value: "fireflies",
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "BadgerDB directory caching fetched transcripts (disabled when empty)",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "https://api.openai.com/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-3-small",
					},
					&cli.IntFlag{
						Name:  "max-chunk-size",
						Usage: "Chunk size limit in characters",
						Value: chunk.DefaultMaxChunkSize,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunk texts to embed per call",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N transcripts",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for rate-limited calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Semantic search over exported transcript chunks",
				ArgsUsage: "<query text>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "namespace",
						Aliases: []string{"n"},
						Usage:   "Index namespace to search",
						Value:   "fireflies",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of matches to return",
						Value:   query.DefaultTopK,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "https://api.openai.com/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-3-small",
					},
					&cli.BoolFlag{
						Name:  "describe-index",
						Usage: "Print index statistics before searching",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func exportCommand(c *cli.Context) error {
	ctx := context.Background()

	filter, err := parseDateFilter(c.String("start-date"), c.String("end-date"))
	if err != nil {
		return err
	}

	source, err := fireflies.NewClient(fireflies.Config{
		APIKey: os.Getenv("FIREFLIES_API_KEY"),
		Pacing: c.Duration("rate-limit-pause"),
	})
	if err != nil {
		return fmt.Errorf("failed to create source client: %w", err)
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	// An empty namespace skips the index entirely and only writes the
	// export file.
	var sink export.Sink
	namespace := c.String("namespace")
	if namespace != "" {
		index, err := newIndexClient()
		if err != nil {
			return err
		}
		sink = index
	}

	checkpoints, err := export.OpenCheckpointStore(c.String("checkpoint-file"))
	if err != nil {
		return fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer checkpoints.Close()

	audit, err := export.OpenAuditWriter(c.String("output"))
	if err != nil {
		return fmt.Errorf("failed to open export file: %w", err)
	}
	defer audit.Close()

	opts := []export.Option{export.WithAudit(audit)}
	if dir := c.String("cache-dir"); dir != "" {
		cache, err := badger.OpenCache(dir, false)
		if err != nil {
			return fmt.Errorf("failed to open transcript cache: %w", err)
		}
		defer cache.Close()
		opts = append(opts, export.WithCache(cache))
	}

	exportConfig := &export.Config{
		Namespace:      namespace,
		IDPrefix:       c.String("id-prefix"),
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Force:          c.Bool("force"),
		ResumeFrom:     c.String("resume-from"),
		Filter:         filter,
	}
	if exportConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if exportConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	chunker := chunk.NewChunker(c.Int("max-chunk-size"), "fireflies")

	exporter, err := export.NewExporter(source, chunker, embedder, sink, checkpoints,
		exportConfig, os.Stderr, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Export file: %s\n", c.String("output"))
	fmt.Fprintf(os.Stderr, "Checkpoint file: %s\n", c.String("checkpoint-file"))
	if namespace != "" {
		fmt.Fprintf(os.Stderr, "Namespace: %s\n", namespace)
	}
	fmt.Fprintln(os.Stderr)

	if _, err := exporter.Run(ctx); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("query text is required")
	}

	index, err := newIndexClient()
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	searcher, err := query.NewSearcher(embedder, index)
	if err != nil {
		return err
	}

	return runQuery(ctx, searcher, c.Bool("describe-index"), text, c.String("namespace"), c.Int("top-k"), os.Stdout)
}

// runQuery performs the search, optionally preceded by an index statistics
// report as a pre-flight diagnostic.
func runQuery(ctx context.Context, searcher *query.Searcher, describe bool, text, namespace string, topK int, out io.Writer) error {
	if describe {
		stats, err := searcher.Describe(ctx)
		if err != nil {
			return fmt.Errorf("failed to describe index: %w", err)
		}
		fmt.Fprint(out, query.FormatStats(stats))
		fmt.Fprintln(out)
	}

	matches, err := searcher.Search(ctx, text, namespace, topK)
	if err != nil {
		return err
	}

	fmt.Fprint(out, query.FormatMatches(matches))
	return nil
}

func newEmbedder(c *cli.Context) (ai.Embedder, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

func newIndexClient() (*pinecone.Client, error) {
	indexName := os.Getenv("PINECONE_INDEX")
	if indexName == "" {
		indexName = defaultIndexName
	}

	client, err := pinecone.NewClient(pinecone.Config{
		APIKey:    os.Getenv("PINECONE_API_KEY"),
		IndexName: indexName,
		IndexHost: os.Getenv("PINECONE_INDEX_HOST"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index client: %w", err)
	}
	return client, nil
}

// parseDateFilter builds a listing filter from YYYY-MM-DD bounds. The end
// date is inclusive, so it extends to the end of that day.
func parseDateFilter(start, end string) (*fireflies.ListFilter, error) {
	if start == "" && end == "" {
		return nil, nil
	}

	filter := &fireflies.ListFilter{}
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return nil, fmt.Errorf("invalid start-date %q: expected YYYY-MM-DD", start)
		}
		filter.Start = t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return nil, fmt.Errorf("invalid end-date %q: expected YYYY-MM-DD", end)
		}
		filter.End = t.Add(24*time.Hour - time.Nanosecond)
	}
	if !filter.Start.IsZero() && !filter.End.IsZero() && filter.End.Before(filter.Start) {
		return nil, fmt.Errorf("end-date is before start-date")
	}
	return filter, nil
}

func setup(c *cli.Context) error {
	// Environment files are optional; real environment wins.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
