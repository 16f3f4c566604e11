package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/poiesic/newsmill/ai/mock"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/fusion"
	"github.com/poiesic/newsmill/index"
	"github.com/poiesic/newsmill/storage"
	"github.com/poiesic/newsmill/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.New()
	require.NoError(t, err)
	return idx
}

func TestNewSearcher(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	provider := mock.NewMockProvider()
	idx := newTestIndex(t)

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(articleRepo, provider, idx)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(articleRepo, provider, idx, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(articleRepo, provider, idx, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with fusion method", func(t *testing.T) {
		searcher, err := NewSearcher(articleRepo, provider, idx, WithFusionMethod(fusion.MethodWeighted))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("invalid fusion method", func(t *testing.T) {
		_, err := NewSearcher(articleRepo, provider, idx, WithFusionMethod(fusion.Method("cascade")))
		assert.Equal(t, ErrInvalidFusionMethod, err)
	})

	t.Run("nil article repository", func(t *testing.T) {
		_, err := NewSearcher(nil, provider, idx)
		assert.Equal(t, ErrArticleRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(articleRepo, nil, idx)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewSearcher(articleRepo, provider, nil)
		assert.Equal(t, ErrIndexRequired, err)
	})
}

func TestSearch_EmptyQuery(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(articleRepo, mock.NewMockProvider(), newTestIndex(t))
	require.NoError(t, err)

	ctx := context.Background()
	results, err := searcher.Search(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_EmptyDatabase(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(articleRepo, mock.NewMockProvider(), newTestIndex(t))
	require.NoError(t, err)

	ctx := context.Background()
	indexed, err := searcher.RebuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, indexed)

	results, err := searcher.Search(ctx, "anything at all", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRebuildIndex(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	_, err = articleRepo.AddArticles(ctx,
		&core.Article{Source: "wire", Title: "storm warnings issued", Text: "coastal regions brace for heavy rain"},
		&core.Article{Source: "wire", Title: "market rally continues", Text: "tech stocks climb for a third day"},
	)
	require.NoError(t, err)

	searcher, err := NewSearcher(articleRepo, mock.NewMockProvider(), newTestIndex(t))
	require.NoError(t, err)

	indexed, err := searcher.RebuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)
}

func TestSearch_KeywordOnly(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	added, err := articleRepo.AddArticles(ctx,
		&core.Article{Source: "wire", Title: "volcano erupts overnight", Text: "the volcano sent ash plumes over nearby towns"},
		&core.Article{Source: "wire", Title: "election results certified", Text: "officials certified the final tally on friday"},
		&core.Article{Source: "wire", Title: "transit strike ends", Text: "buses and trains resume normal schedules"},
	)
	require.NoError(t, err)

	searcher, err := NewSearcher(articleRepo, mock.NewMockProvider(), newTestIndex(t))
	require.NoError(t, err)

	_, err = searcher.RebuildIndex(ctx)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "volcano ash", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, added[0].Id, results[0].Article.Id)
	assert.Greater(t, results[0].Bm25Score, 0.0)
	assert.Equal(t, 0.0, results[0].VectorScore)
}

// hybridCorpus stores three articles: one keyword-only match, one that
// matches both retrieval paths, and one reachable only semantically.
func hybridCorpus(t *testing.T, ctx context.Context, articleRepo storage.ArticleRepository) []*core.Article {
	t.Helper()
	added, err := articleRepo.AddArticles(ctx,
		&core.Article{Source: "wire", Title: "ants on the march", Text: "ants carried leaves across the trail all morning"},
		&core.Article{Source: "wire", Title: "picnic season begins", Text: "ants showed up before the sandwiches did", Vector: []float32{1, 0, 0}},
		&core.Article{Source: "wire", Title: "quantum milestone reached", Text: "researchers demonstrated error corrected qubits", Vector: []float32{0, 1, 0}},
	)
	require.NoError(t, err)
	return added
}

func TestSearch_HybridRRF(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	added := hybridCorpus(t, ctx, articleRepo)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	provider := mock.NewMockProviderWithEmbedder(embedder)

	searcher, err := NewSearcher(articleRepo, provider, newTestIndex(t))
	require.NoError(t, err)
	_, err = searcher.RebuildIndex(ctx)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "ants", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// The article hit by both paths outranks the stronger keyword-only hit.
	assert.Equal(t, added[1].Id, results[0].Article.Id)
	assert.Greater(t, results[0].Bm25Score, 0.0)
	assert.InDelta(t, 1.0, results[0].VectorScore, 1e-6)

	assert.Equal(t, added[0].Id, results[1].Article.Id)
	assert.Equal(t, 0.0, results[1].VectorScore)

	// Zero keyword score, below the similarity floor: ranks last.
	assert.Equal(t, added[2].Id, results[2].Article.Id)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].FusedScore, results[i].FusedScore)
	}
}

func TestSearch_WeightedFusion(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	added := hybridCorpus(t, ctx, articleRepo)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	provider := mock.NewMockProviderWithEmbedder(embedder)

	searcher, err := NewSearcher(articleRepo, provider, newTestIndex(t),
		WithFusionMethod(fusion.MethodWeighted),
		WithKeywordWeight(0.5),
	)
	require.NoError(t, err)
	_, err = searcher.RebuildIndex(ctx)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "ants", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Perfect semantic score plus a keyword hit dominates.
	assert.Equal(t, added[1].Id, results[0].Article.Id)
}

func TestSearch_MaxHits(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	hybridCorpus(t, ctx, articleRepo)

	searcher, err := NewSearcher(articleRepo, mock.NewMockProvider(), newTestIndex(t))
	require.NoError(t, err)
	_, err = searcher.RebuildIndex(ctx)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "ants", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_UnbuiltIndexSemanticOnly(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	added := hybridCorpus(t, ctx, articleRepo)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	provider := mock.NewMockProviderWithEmbedder(embedder)

	// No RebuildIndex call; the keyword path is unavailable.
	searcher, err := NewSearcher(articleRepo, provider, newTestIndex(t))
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "ants", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, added[1].Id, results[0].Article.Id)
	assert.Equal(t, 0.0, results[0].Bm25Score)
	assert.InDelta(t, 1.0, results[0].VectorScore, 1e-6)
}

func TestSearch_QueryEmbeddingNormalized(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	added := hybridCorpus(t, ctx, articleRepo)

	// An endpoint returning raw, non-unit vectors. Without query-side
	// normalization the dot product against the stored unit vector
	// would be 0.25, under the similarity floor.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.25, 0, 0}, nil
	}
	provider := mock.NewMockProviderWithEmbedder(embedder)

	searcher, err := NewSearcher(articleRepo, provider, newTestIndex(t))
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "picnic", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, added[1].Id, results[0].Article.Id)
	assert.InDelta(t, 1.0, results[0].VectorScore, 1e-6)
}

// recordingMonitor captures every callback for assertions.
type recordingMonitor struct {
	startQuery      string
	keywordRanking  []fusion.Ranked
	semanticRanking []fusion.Ranked
	fusedRanking    []fusion.Ranked
	retrieved       []*core.Article
	bothHits        int
	keywordHits     int
	semanticHits    int
	finished        []*core.FusedResult
}

var _ SearchMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(query string)                        { m.startQuery = query }
func (m *recordingMonitor) AfterKeywordSearch(r []fusion.Ranked)      { m.keywordRanking = r }
func (m *recordingMonitor) AfterSemanticSearch(r []fusion.Ranked)     { m.semanticRanking = r }
func (m *recordingMonitor) AfterFusion(r []fusion.Ranked)             { m.fusedRanking = r }
func (m *recordingMonitor) AfterArticleRetrieval(a []*core.Article)   { m.retrieved = a }
func (m *recordingMonitor) KeywordAndSemanticHit(_ *core.Article)     { m.bothHits++ }
func (m *recordingMonitor) KeywordHit(_ *core.Article)                { m.keywordHits++ }
func (m *recordingMonitor) SemanticHit(_ *core.Article)               { m.semanticHits++ }
func (m *recordingMonitor) Finish(results []*core.FusedResult)        { m.finished = results }

func TestSearchWithMonitor(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	hybridCorpus(t, ctx, articleRepo)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	provider := mock.NewMockProviderWithEmbedder(embedder)

	searcher, err := NewSearcher(articleRepo, provider, newTestIndex(t))
	require.NoError(t, err)
	_, err = searcher.RebuildIndex(ctx)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := searcher.SearchWithMonitor(ctx, "ants", 10, monitor)
	require.NoError(t, err)

	assert.Equal(t, "ants", monitor.startQuery)
	assert.Len(t, monitor.keywordRanking, 3)
	assert.Len(t, monitor.semanticRanking, 1)
	assert.NotEmpty(t, monitor.fusedRanking)
	assert.Len(t, monitor.retrieved, 3)
	assert.Equal(t, 1, monitor.bothHits)
	assert.Equal(t, 2, monitor.keywordHits)
	assert.Equal(t, 0, monitor.semanticHits)
	assert.Equal(t, results, monitor.finished)
}

func TestSearchCandidates(t *testing.T) {
	articleRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	added := hybridCorpus(t, ctx, articleRepo)

	searcher, err := NewSearcher(articleRepo, mock.NewMockProvider(), newTestIndex(t))
	require.NoError(t, err)
	_, err = searcher.RebuildIndex(ctx)
	require.NoError(t, err)

	t.Run("empty candidates", func(t *testing.T) {
		results, err := searcher.SearchCandidates(ctx, "ants", nil, 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("reranks candidate subset", func(t *testing.T) {
		candidates := []fusion.Ranked{
			{Id: added[1].Id.String(), Score: 0.9},
			{Id: added[2].Id.String(), Score: 0.8},
		}
		results, err := searcher.SearchCandidates(ctx, "ants", candidates, 5)
		require.NoError(t, err)
		require.Len(t, results, 2)

		// The keyword hit plus the higher vector score wins.
		assert.Equal(t, added[1].Id.String(), results[0].Id)

		for _, r := range results {
			assert.NotEqual(t, added[0].Id.String(), r.Id)
		}
	})
}
