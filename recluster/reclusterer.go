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


package recluster

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/newsmill/ai"
	"github.com/poiesic/newsmill/cluster"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/storage"
)

// Config holds configuration for the reclustering operation.
type Config struct {
	// BatchSize is the number of articles to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of articles)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// NoiseThreshold is the outlier score above which an article is
	// reported as a likely outlier
	NoiseThreshold float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		NoiseThreshold: cluster.DefaultNoiseThreshold,
	}
}

// Reclusterer orchestrates rebuilding the topic cluster snapshot from
// every article in the database.
type Reclusterer struct {
	articleRepo  storage.ArticleRepository
	snapshotRepo storage.SnapshotRepository
	embedder     ai.Embedder
	clusterer    *cluster.Clusterer
	config       *Config
	progress     io.Writer
	processor    *BatchProcessor
	iterator     *ArticleIterator
}

// NewReclusterer creates a new reclusterer.
// progress: where to write progress output (typically os.Stderr)
func NewReclusterer(
	articleRepo storage.ArticleRepository,
	snapshotRepo storage.SnapshotRepository,
	embedder ai.Embedder,
	clusterer *cluster.Clusterer,
	config *Config,
	progress io.Writer,
) *Reclusterer {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(articleRepo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewArticleIterator(articleRepo, config.BatchSize)

	return &Reclusterer{
		articleRepo:  articleRepo,
		snapshotRepo: snapshotRepo,
		embedder:     embedder,
		clusterer:    clusterer,
		config:       config,
		progress:     progress,
		processor:    processor,
		iterator:     iterator,
	}
}

// Run executes the reclustering operation.
// Articles missing embeddings are embedded first, then the whole corpus
// is clustered and the resulting snapshot persisted.
// Progress is reported to the configured writer.
func (r *Reclusterer) Run(ctx context.Context) (*core.ClusterSnapshot, error) {
	var (
		articleIds []string
		embeddings [][]float32
	)

	// Count the corpus up front so the tracker can report percentages
	total := 0
	err := r.articleRepo.ForEachArticle(ctx, func(article *core.Article) error {
		total++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No articles found in database (0 articles)\n")
		return nil, nil
	}

	fmt.Fprintf(r.progress, "Starting reclustering of %d articles (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(articles []*core.Article) error {
		// Fill in any missing embeddings
		if err := r.processor.Process(ctx, articles); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		for _, article := range articles {
			articleIds = append(articleIds, article.Id.String())
			embeddings = append(embeddings, article.Vector)
		}

		processed += len(articles)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	tracker.Finish()

	r.clusterer.FitPredict(embeddings)

	summaries, err := r.clusterer.ClusterInfo(embeddings, articleIds)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize clusters: %w", err)
	}
	noise := r.clusterer.NoiseArticles(articleIds, r.config.NoiseThreshold)

	stats := r.clusterer.Stats()
	snapshot := &core.ClusterSnapshot{
		CreatedAt: time.Now().UTC(),
		NClusters: stats.NClusters,
		NNoise:    stats.NNoise,
		Clusters:  summaries,
		Noise:     noise,
	}

	if err := r.snapshotRepo.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reclustering complete. %d clusters, %d noise articles from %d articles in %v\n",
		stats.NClusters, stats.NNoise, total, elapsed.Round(time.Second))

	return snapshot, nil
}
