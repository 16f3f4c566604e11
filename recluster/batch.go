package recluster

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/newsmill/ai"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/storage"
)

// BatchProcessor generates embeddings for articles that are missing them.
type BatchProcessor struct {
	repo           storage.ArticleRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ArticleRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds every article in the batch that has no vector yet and
// updates it in the database. Articles that already carry a vector are
// left untouched. Vectors are normalized after embedding to ensure
// compatibility with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, articles []*core.Article) error {
	var pending []*core.Article
	for _, article := range articles {
		if len(article.Vector) == 0 {
			pending = append(pending, article)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	texts := make([]string, len(pending))
	for i, article := range pending {
		texts[i] = core.DocumentFromArticle(article).Text
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(pending) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(pending), len(embeddings))
	}

	// Normalize vectors and assign to articles
	for i := range pending {
		pending[i].Vector = core.NormalizeVector(embeddings[i])
	}

	// Update articles in database
	_, err = bp.repo.UpdateArticles(ctx, pending...)
	if err != nil {
		return fmt.Errorf("failed to update articles: %w", err)
	}

	return nil
}
