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


package newsmill

import (
	"io"
	"log/slog"

	"github.com/poiesic/newsmill/ai"
	"github.com/poiesic/newsmill/ai/openai"
	"github.com/poiesic/newsmill/cluster"
	"github.com/poiesic/newsmill/index"
	"github.com/poiesic/newsmill/ingestion"
	"github.com/poiesic/newsmill/recluster"
	"github.com/poiesic/newsmill/search"
	"github.com/poiesic/newsmill/storage"
	"github.com/poiesic/newsmill/storage/badger"
)

type Database struct {
	backend      *badger.Backend
	articleRepo  storage.ArticleRepository
	snapshotRepo storage.SnapshotRepository
	provider     ai.AIProvider
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig sets the configuration used to build the AI provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider supplies a pre-built AI provider instead of constructing
// one from the configuration. Useful for tests.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create article repository
	articleRepo, err := badger.NewArticleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create snapshot repository
	snapshotRepo, err := badger.NewSnapshotRepository(backend)
	if err != nil {
		articleRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			snapshotRepo.Close()
			articleRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:      backend,
		articleRepo:  articleRepo,
		snapshotRepo: snapshotRepo,
		provider:     provider,
		logger:       slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.snapshotRepo.Close(); err != nil {
		db.logger.Error("error closing snapshot repository", "err", err)
		return err
	}
	if err := db.articleRepo.Close(); err != nil {
		db.logger.Error("error closing article repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ArticleRepository() storage.ArticleRepository {
	return db.articleRepo
}

func (db *Database) SnapshotRepository() storage.SnapshotRepository {
	return db.snapshotRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.articleRepo, db.snapshotRepo, db.provider, opts...)
}

// NewSearcher builds a hybrid searcher over this database with a fresh
// keyword index. Call RebuildIndex on the result before searching.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	idx, err := index.New()
	if err != nil {
		return nil, err
	}
	return search.NewSearcher(db.articleRepo, db.provider, idx, opts...)
}

// NewReclusterer builds a reclusterer over this database.
// progress: where to write progress output (typically os.Stderr)
func (db *Database) NewReclusterer(config *recluster.Config, progress io.Writer, opts ...cluster.Option) (*recluster.Reclusterer, error) {
	clusterer, err := cluster.New(opts...)
	if err != nil {
		return nil, err
	}
	return recluster.NewReclusterer(db.articleRepo, db.snapshotRepo, db.provider.Embedder(), clusterer, config, progress), nil
}
