package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/newsmill/ai"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/storage"
)

// embeddingProcessor generates embeddings for articles.
type embeddingProcessor struct {
	articleRepository storage.ArticleRepository
	embedder          ai.Embedder
	lastID            core.ID
	logger            *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(articleRepository storage.ArticleRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if articleRepository == nil {
		return nil, fmt.Errorf("article repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		articleRepository: articleRepository,
		embedder:          embedder,
		logger:            logger.With("processor", "embeddings"),
	}, nil
}

// process generates embeddings for the specified articles.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing articles for embeddings", "articles", len(ids))

	// Sort first so checkpointing works correctly
	slices.Sort(ids)

	articles, err := ep.articleRepository.GetArticles(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving articles", "err", err)
		return err
	}

	texts := make([]string, len(articles))
	for i, article := range articles {
		texts[i] = core.DocumentFromArticle(article).Text
	}

	ep.logger.Debug("generating embeddings for articles", "articles", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(articles) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(articles), len(embeddings))
	}

	for i := range embeddings {
		articles[i].Vector = core.NormalizeVector(embeddings[i])
	}

	updated, err := ep.articleRepository.UpdateArticles(ctx, articles...)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return nil
	}

	highestID := updated[len(updated)-1].Id
	if highestID > ep.lastID {
		ep.lastID = highestID
	}

	return nil
}

// checkpoint saves the processor's current state.
// Currently unimplemented - reserved for future checkpointing support.
func (ep *embeddingProcessor) checkpoint() error {
	// TODO: Implement checkpoint storage via repository
	return nil
}
