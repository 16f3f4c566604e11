package storage

import (
	"context"
	"time"

	"github.com/poiesic/newsmill/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ArticleRepository provides operations for managing articles.
type ArticleRepository interface {
	Repository

	// AddArticles adds one or more articles to storage.
	// For articles with ID=0, derives a content ID from title and text.
	// Sets InsertedAt timestamp if not already set.
	// Returns the articles with IDs and timestamps populated.
	AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error)

	// UpdateArticles updates existing articles.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any article doesn't exist.
	UpdateArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error)

	// DeleteArticles removes articles by their IDs.
	// Returns ErrNotFound if any article doesn't exist.
	DeleteArticles(ctx context.Context, ids ...core.ID) error

	// GetArticle retrieves a single article by ID.
	// Returns ErrNotFound if the article doesn't exist.
	GetArticle(ctx context.Context, id core.ID) (*core.Article, error)

	// GetArticles retrieves multiple articles by their IDs.
	// Returns only the articles that exist (no error for missing articles).
	GetArticles(ctx context.Context, ids ...core.ID) ([]*core.Article, error)

	// GetArticlesByDateRange retrieves articles within a publication time range.
	// Returns articles where start <= PublishedAt < end, ordered by publication time.
	GetArticlesByDateRange(ctx context.Context, start, end time.Time) ([]*core.Article, error)

	// GetRecentArticles retrieves the N most recently published articles.
	// Returns up to limit articles, most recent first.
	GetRecentArticles(ctx context.Context, limit int) ([]*core.Article, error)

	// ForEachArticle streams every stored article to fn in unspecified
	// order. Iteration stops early when fn returns an error, and that
	// error is returned.
	ForEachArticle(ctx context.Context, fn func(article *core.Article) error) error

	// FindSimilar finds articles whose embedding is similar to the given vector.
	// Returns articles with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first). Articles without an
	// embedding are skipped.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)
}

// SnapshotRepository provides operations for clustering snapshots and
// duplicate pairs.
type SnapshotRepository interface {
	Repository

	// SaveSnapshot persists a clustering snapshot.
	// Sets CreatedAt if not already set.
	SaveSnapshot(ctx context.Context, snapshot *core.ClusterSnapshot) error

	// LatestSnapshot retrieves the most recent clustering snapshot.
	// Returns ErrNotFound when no snapshot has been saved.
	LatestSnapshot(ctx context.Context) (*core.ClusterSnapshot, error)

	// SaveDuplicatePairs persists duplicate pairs, replacing pairs
	// previously stored for the same id combination.
	SaveDuplicatePairs(ctx context.Context, pairs ...core.DuplicatePair) error

	// GetDuplicatePairs retrieves all stored duplicate pairs, ordered
	// by similarity descending.
	GetDuplicatePairs(ctx context.Context) ([]core.DuplicatePair, error)
}
