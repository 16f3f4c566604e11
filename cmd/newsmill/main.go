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
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/newsmill/ai"
	"github.com/poiesic/newsmill/ai/openai"
	"github.com/poiesic/newsmill/cluster"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/dedup"
	"github.com/poiesic/newsmill/recluster"
	"github.com/poiesic/newsmill/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "newsmill",
		Usage: "Hybrid retrieval and topic intelligence for news archives",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "recluster",
				Usage:  "Rebuild the topic cluster snapshot from all articles",
				Action: reclusterCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "min-cluster-size",
						Usage: "Smallest group that counts as a topic cluster",
						Value: cluster.DefaultMinClusterSize,
					},
					&cli.IntFlag{
						Name:  "min-samples",
						Usage: "Density threshold for core points",
						Value: cluster.DefaultMinSamples,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of articles to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N articles",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
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
				Name:   "dedup",
				Usage:  "Scan all articles for near-duplicate pairs",
				Action: dedupCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Jaccard similarity threshold for duplicates",
						Value: dedup.DefaultThreshold,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Persist detected pairs to the database",
						Value: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func reclusterCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Open database
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	articleRepo, err := badger.NewArticleRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create article repository: %w", err)
	}
	defer articleRepo.Close()

	snapshotRepo, err := badger.NewSnapshotRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create snapshot repository: %w", err)
	}
	defer snapshotRepo.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Create embedder
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	// Create clusterer
	clusterer, err := cluster.New(
		cluster.WithMinClusterSize(c.Int("min-cluster-size")),
		cluster.WithMinSamples(c.Int("min-samples")),
	)
	if err != nil {
		return fmt.Errorf("invalid clustering configuration: %w", err)
	}

	// Create reclustering config
	reclusterConfig := &recluster.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		NoiseThreshold: cluster.DefaultNoiseThreshold,
	}

	// Validate config
	if reclusterConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reclusterConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reclusterConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	// Create reclusterer
	reclusterer := recluster.NewReclusterer(articleRepo, snapshotRepo, embedder, clusterer, reclusterConfig, os.Stderr)

	// Run reclustering
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	snapshot, err := reclusterer.Run(ctx)
	if err != nil {
		return fmt.Errorf("reclustering failed: %w", err)
	}

	if snapshot != nil {
		for _, summary := range snapshot.Clusters {
			fmt.Printf("cluster %d: %d articles, coherence %.2f\n",
				summary.ClusterId, summary.Size, summary.CoherenceScore)
		}
	}

	return nil
}

func dedupCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Open database
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	articleRepo, err := badger.NewArticleRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create article repository: %w", err)
	}
	defer articleRepo.Close()

	snapshotRepo, err := badger.NewSnapshotRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create snapshot repository: %w", err)
	}
	defer snapshotRepo.Close()

	// Create detector
	detector, err := dedup.New(dedup.WithThreshold(c.Float64("threshold")))
	if err != nil {
		return fmt.Errorf("invalid detector configuration: %w", err)
	}

	// Load the corpus
	count := 0
	err = articleRepo.ForEachArticle(ctx, func(article *core.Article) error {
		doc := core.DocumentFromArticle(article)
		detector.AddDocument(doc.Id, doc.Text)
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load articles: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Scanning %d articles for near-duplicates\n", count)

	pairs := detector.FindDuplicatesLSH(nil)
	if len(pairs) == 0 {
		fmt.Println("No near-duplicates found")
		return nil
	}

	for _, pair := range pairs {
		fmt.Printf("%s  %s  %.3f\n", pair.Id1, pair.Id2, pair.Similarity)
	}

	if c.Bool("save") {
		if err := snapshotRepo.SaveDuplicatePairs(ctx, pairs...); err != nil {
			return fmt.Errorf("failed to save duplicate pairs: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %d pairs\n", len(pairs))
	}

	return nil
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
