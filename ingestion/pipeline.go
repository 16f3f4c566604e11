package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/newsmill/ai"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/dedup"
	"github.com/poiesic/newsmill/storage"
)

// Pipeline orchestrates the ingestion and processing of articles.
// Duplicate detection runs synchronously during Ingest; embedding
// generation runs on a worker pool.
type Pipeline struct {
	articleRepository  storage.ArticleRepository
	snapshotRepository storage.SnapshotRepository
	detector           *dedup.Detector
	embeddingPool      *ants.Pool
	embeddingProc      processor
	logger             *slog.Logger

	mu sync.Mutex // guards detector
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithDetector sets a custom duplicate detector.
// Default is a detector with standard settings.
func WithDetector(detector *dedup.Detector) Option {
	return func(p *Pipeline) error {
		if detector != nil {
			p.detector = detector
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	articleRepository storage.ArticleRepository,
	snapshotRepository storage.SnapshotRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if articleRepository == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if snapshotRepository == nil {
		return nil, ErrSnapshotRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	detector, err := dedup.New()
	if err != nil {
		embeddingPool.Release()
		return nil, err
	}

	p := &Pipeline{
		articleRepository:  articleRepository,
		snapshotRepository: snapshotRepository,
		detector:           detector,
		embeddingPool:      embeddingPool,
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processors after options are applied (so they get final config)
	embeddingProc, err := newEmbeddingProcessor(articleRepository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// SeedFromStorage loads every stored article into the duplicate
// detector so future ingests are compared against the full corpus.
// Returns the number of articles loaded.
func (p *Pipeline) SeedFromStorage(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	count := 0
	err := p.articleRepository.ForEachArticle(ctx, func(article *core.Article) error {
		doc := core.DocumentFromArticle(article)
		p.detector.AddDocument(doc.Id, doc.Text)
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}

	p.logger.Info("duplicate detector seeded", "articles", count)
	return count, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Metadata  map[string]string // Optional metadata to attach to articles
	Timestamp time.Time         // Optional publication timestamp (uses current time if zero)
}

// Report summarizes one ingest batch.
type Report struct {
	// Added holds the stored articles with IDs and timestamps populated.
	Added []*core.Article

	// Duplicates holds the near-duplicate pairs involving at least one
	// article from this batch, sorted by similarity descending.
	Duplicates []core.DuplicatePair
}

// Ingest validates and stores articles, detects near-duplicates against
// the known corpus, and schedules embedding generation.
// Detected pairs are persisted and returned in the report.
// Errors during async processing are logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, articles []*core.Article, opts *IngestOptions) (*Report, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}

	for _, article := range articles {
		if article.PublishedAt.IsZero() {
			if !opts.Timestamp.IsZero() {
				article.PublishedAt = opts.Timestamp
			} else {
				article.PublishedAt = time.Now().UTC()
			}
		}
		if article.Metadata == nil && opts.Metadata != nil {
			article.Metadata = opts.Metadata
		}
		if err := core.ValidateArticle(article); err != nil {
			return nil, err
		}
	}

	// Add to storage
	added, err := p.articleRepository.AddArticles(ctx, articles...)
	if err != nil {
		return nil, err
	}

	if len(added) == 0 {
		return &Report{Added: []*core.Article{}, Duplicates: []core.DuplicatePair{}}, nil
	}

	duplicates, err := p.detectDuplicates(ctx, added)
	if err != nil {
		return nil, err
	}

	// Extract IDs
	ids := make([]core.ID, len(added))
	for i, article := range added {
		ids[i] = article.Id
	}

	// Submit for async processing
	p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
			return
		}
		if err := p.embeddingProc.checkpoint(); err != nil {
			p.logger.Error("error applying embedding checkpoint", "err", err)
		}
	})

	return &Report{Added: added, Duplicates: duplicates}, nil
}

// detectDuplicates registers the batch with the detector and returns
// the persisted pairs that involve at least one batch article. Only
// the batch ids are probed, so ingest cost does not grow with the
// size of the archive.
func (p *Pipeline) detectDuplicates(ctx context.Context, added []*core.Article) ([]core.DuplicatePair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	batchIds := make([]string, len(added))
	for i, article := range added {
		doc := core.DocumentFromArticle(article)
		p.detector.AddDocument(doc.Id, doc.Text)
		batchIds[i] = doc.Id
	}

	duplicates := p.detector.FindDuplicatesLSH(batchIds)

	if len(duplicates) > 0 {
		if err := p.snapshotRepository.SaveDuplicatePairs(ctx, duplicates...); err != nil {
			p.logger.Error("error saving duplicate pairs", "pairs", len(duplicates), "err", err)
			return nil, err
		}
		p.logger.Info("near-duplicates detected", "pairs", len(duplicates))
	}

	return duplicates, nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
