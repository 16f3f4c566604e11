package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend *Backend
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(backend *Backend) (*ArticleRepository, error) {
	return &ArticleRepository{backend: backend}, nil
}

// Close implements storage.Repository. The repository holds no
// resources of its own; the backend is closed separately.
func (r *ArticleRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *ArticleRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *ArticleRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddArticles adds one or more articles to storage. Articles without
// an ID get a content ID derived from title and text, so re-ingesting
// the same article overwrites rather than duplicates.
func (r *ArticleRepository) AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			if article.Id == 0 {
				article.Id = core.IDFromContent(article.Title + article.Text)
			}

			article.InsertedAt = time.Now().UTC()
			article.UpdatedAt = article.InsertedAt

			key := makeArticleKey(article.Id)
			if err := tx.Set(key, storage.MarshalArticle(article)); err != nil {
				return err
			}

			dateKey := makeArticleDateKey(article.PublishedAt, article.Id)
			if err := tx.Set(dateKey, storage.MarshalID(article.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return articles, err
}

// UpdateArticles updates existing articles.
func (r *ArticleRepository) UpdateArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			key := makeArticleKey(article.Id)

			old, err := r.readArticle(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			article.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalArticle(article)); err != nil {
				return err
			}

			// Move the date index entry if the publication time changed.
			if !old.PublishedAt.Equal(article.PublishedAt) {
				if err := tx.Delete(makeArticleDateKey(old.PublishedAt, old.Id)); err != nil {
					return err
				}
				newDateKey := makeArticleDateKey(article.PublishedAt, article.Id)
				if err := tx.Set(newDateKey, storage.MarshalID(article.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return articles, err
}

// DeleteArticles removes articles by their IDs.
func (r *ArticleRepository) DeleteArticles(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeArticleKey(id)

			article, err := r.readArticle(tx, key)
			if err != nil {
				return err
			}
			if article == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeArticleDateKey(article.PublishedAt, article.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetArticle retrieves a single article by ID.
func (r *ArticleRepository) GetArticle(ctx context.Context, id core.ID) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readArticle(tx, makeArticleKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetArticles retrieves multiple articles by their IDs. Missing
// articles are skipped without error.
func (r *ArticleRepository) GetArticles(ctx context.Context, ids ...core.ID) ([]*core.Article, error) {
	var result []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			article, err := r.readArticle(tx, makeArticleKey(id))
			if err != nil {
				return err
			}
			if article != nil {
				result = append(result, article)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetArticlesByDateRange retrieves articles published within
// [start, end), ordered by publication time.
func (r *ArticleRepository) GetArticlesByDateRange(ctx context.Context, start, end time.Time) ([]*core.Article, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialArticleDateKey(start)
		endKey := makePartialArticleDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			var articleID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				articleID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			article, err := r.readArticle(tx, makeArticleKey(articleID))
			if err != nil {
				return err
			}
			if article != nil {
				results = append(results, article)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecentArticles retrieves the N most recently published articles,
// most recent first.
func (r *ArticleRepository) GetRecentArticles(ctx context.Context, limit int) ([]*core.Article, error) {
	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible date key, then walk backwards.
		startKey := makePartialArticleDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(articleDatePrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var articleID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				articleID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			article, err := r.readArticle(tx, makeArticleKey(articleID))
			if err != nil {
				return err
			}
			if article != nil {
				results = append(results, article)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// ForEachArticle streams every stored article to fn. Iteration stops
// early when fn returns an error.
func (r *ArticleRepository) ForEachArticle(ctx context.Context, fn func(article *core.Article) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(articlePrefix + ":")
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var article *core.Article
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				article, err = storage.UnmarshalArticle(val)
				return err
			}); err != nil {
				return err
			}
			if err := fn(article); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// readArticle reads and unmarshals an article. Returns nil without
// error when the key does not exist.
func (r *ArticleRepository) readArticle(tx *badger.Txn, key []byte) (*core.Article, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var article *core.Article
	err = item.Value(func(val []byte) error {
		var err error
		article, err = storage.UnmarshalArticle(val)
		return err
	})
	return article, err
}
