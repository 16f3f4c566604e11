package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/newsmill/ai"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/fusion"
	"github.com/poiesic/newsmill/index"
	"github.com/poiesic/newsmill/storage"
)

// DefaultMinSimilarity is the cosine similarity floor for the semantic
// retrieval path.
const DefaultMinSimilarity = 0.60

// Searcher provides hybrid keyword and semantic search over articles.
type Searcher struct {
	articleRepository storage.ArticleRepository
	embedder          ai.Embedder
	index             *index.Index
	method            fusion.Method
	keywordWeight     float64
	rrfK              int
	minSimilarity     float32
	logger            *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithFusionMethod selects how the keyword and semantic rankings are
// merged. Default is fusion.MethodRRF.
func WithFusionMethod(method fusion.Method) Option {
	return func(s *Searcher) error {
		if method != fusion.MethodRRF && method != fusion.MethodWeighted {
			return ErrInvalidFusionMethod
		}
		s.method = method
		return nil
	}
}

// WithKeywordWeight sets the keyword share used by the weighted fusion
// method. 0 means vector-only and 1 keyword-only; values outside
// [0,1] fall back to fusion.DefaultKeywordWeight.
func WithKeywordWeight(weight float64) Option {
	return func(s *Searcher) error {
		s.keywordWeight = weight
		return nil
	}
}

// WithRRFK sets the reciprocal rank fusion constant.
// Non-positive values fall back to fusion.DefaultK.
func WithRRFK(k int) Option {
	return func(s *Searcher) error {
		s.rrfK = k
		return nil
	}
}

// WithMinSimilarity sets the similarity floor for semantic retrieval.
// Default is DefaultMinSimilarity.
func WithMinSimilarity(minSimilarity float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = minSimilarity
		return nil
	}
}

// NewSearcher creates a new searcher. The index starts empty; call
// RebuildIndex before searching to enable the keyword path.
func NewSearcher(
	articleRepository storage.ArticleRepository,
	provider ai.AIProvider,
	idx *index.Index,
	opts ...Option,
) (*Searcher, error) {
	if articleRepository == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	s := &Searcher{
		articleRepository: articleRepository,
		embedder:          provider.Embedder(),
		index:             idx,
		method:            fusion.MethodRRF,
		keywordWeight:     fusion.DefaultKeywordWeight,
		rrfK:              fusion.DefaultK,
		minSimilarity:     DefaultMinSimilarity,
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// RebuildIndex rebuilds the keyword index from every stored article.
// Returns the number of documents indexed.
func (s *Searcher) RebuildIndex(ctx context.Context) (int, error) {
	var docs []core.Document
	err := s.articleRepository.ForEachArticle(ctx, func(article *core.Article) error {
		docs = append(docs, core.DocumentFromArticle(article))
		return nil
	})
	if err != nil {
		s.logger.Error("error loading articles for index rebuild", "err", err)
		return 0, err
	}

	indexed := s.index.Build(docs)
	s.logger.Info("keyword index rebuilt", "articles", len(docs), "indexed", indexed)
	return indexed, nil
}

// Search finds articles relevant to the query using both retrieval paths.
// Returns up to maxHits results, ranked by fused relevance score.
func (s *Searcher) Search(ctx context.Context, query string, maxHits int) ([]*core.FusedResult, error) {
	return s.SearchWithMonitor(ctx, query, maxHits, nil)
}

// SearchWithMonitor searches with monitoring callbacks at each stage.
// Returns up to maxHits results, ranked by fused relevance score.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.FusedResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	if strings.TrimSpace(query) == "" || maxHits <= 0 {
		monitor.Finish([]*core.FusedResult{})
		return []*core.FusedResult{}, nil
	}

	// 1. Keyword search via the BM25 index
	keywordScores := make(map[string]float64)
	var keywordRanking []fusion.Ranked
	if s.index.Built() {
		for _, hit := range s.index.Search(query, maxHits, 0) {
			keywordRanking = append(keywordRanking, fusion.Ranked{Id: hit.Id, Score: hit.Score})
			keywordScores[hit.Id] = hit.Score
		}
	} else {
		s.logger.Warn("keyword index not built, falling back to semantic-only search")
	}
	monitor.AfterKeywordSearch(keywordRanking)

	// 2. Semantic search via vector similarity
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// Stored vectors are unit-normalized at ingestion; normalize the
	// query side too so the similarity floor is a true cosine bound.
	matches, err := s.articleRepository.FindSimilar(ctx, core.NormalizeVector(embedding), s.minSimilarity, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar articles", "err", err)
		return nil, err
	}

	semanticScores := make(map[string]float64)
	articlesById := make(map[string]*core.Article)
	var semanticRanking []fusion.Ranked
	for _, match := range matches {
		id := match.Article.Id.String()
		semanticRanking = append(semanticRanking, fusion.Ranked{Id: id, Score: float64(match.Score)})
		semanticScores[id] = float64(match.Score)
		articlesById[id] = match.Article
	}
	monitor.AfterSemanticSearch(semanticRanking)

	// 3. Fuse the two rankings
	var fused []fusion.Ranked
	switch s.method {
	case fusion.MethodWeighted:
		fused = fusion.CombineScores(keywordRanking, semanticRanking, s.keywordWeight, true)
	default:
		fused = fusion.ReciprocalRankFusion([][]fusion.Ranked{keywordRanking, semanticRanking}, s.rrfK)
	}
	monitor.AfterFusion(fused)

	if len(fused) > maxHits {
		fused = fused[:maxHits]
	}
	if len(fused) == 0 {
		monitor.Finish([]*core.FusedResult{})
		return []*core.FusedResult{}, nil
	}

	// 4. Retrieve articles the semantic path didn't already load
	var missingIds []core.ID
	for _, entry := range fused {
		if _, ok := articlesById[entry.Id]; ok {
			continue
		}
		id, err := core.ParseID(entry.Id)
		if err != nil {
			s.logger.Warn("skipping unparseable document id", "id", entry.Id, "err", err)
			continue
		}
		missingIds = append(missingIds, id)
	}
	if len(missingIds) > 0 {
		articles, err := s.articleRepository.GetArticles(ctx, missingIds...)
		if err != nil {
			s.logger.Error("error retrieving articles", "articleCount", len(missingIds), "err", err)
			return nil, err
		}
		for _, article := range articles {
			articlesById[article.Id.String()] = article
		}
	}

	retrieved := make([]*core.Article, 0, len(articlesById))
	for _, article := range articlesById {
		retrieved = append(retrieved, article)
	}
	monitor.AfterArticleRetrieval(retrieved)

	// 5. Build the final results, preserving per-source scores
	results := make([]*core.FusedResult, 0, len(fused))
	for _, entry := range fused {
		article, ok := articlesById[entry.Id]
		if !ok {
			// Indexed document no longer in storage
			s.logger.Debug("fused result missing from storage", "id", entry.Id)
			continue
		}

		bm25Score, inKeyword := keywordScores[entry.Id]
		vectorScore, inSemantic := semanticScores[entry.Id]
		if inKeyword && inSemantic {
			monitor.KeywordAndSemanticHit(article)
		} else if inKeyword {
			monitor.KeywordHit(article)
		} else {
			monitor.SemanticHit(article)
		}

		results = append(results, &core.FusedResult{
			Article:     article,
			FusedScore:  entry.Score,
			Bm25Score:   bm25Score,
			VectorScore: vectorScore,
		})
	}
	monitor.Finish(results)

	return results, nil
}

// SearchCandidates scores a fixed candidate set against the query using
// the keyword index and a weighted blend with the candidates' vector
// scores. Useful for re-ranking an externally retrieved candidate list.
func (s *Searcher) SearchCandidates(ctx context.Context, query string, candidates []fusion.Ranked, topK int) ([]fusion.Ranked, error) {
	if len(candidates) == 0 {
		return []fusion.Ranked{}, nil
	}

	candidateIds := make([]string, 0, len(candidates))
	for _, c := range candidates {
		candidateIds = append(candidateIds, c.Id)
	}

	var keywordRanking []fusion.Ranked
	if s.index.Built() {
		for _, hit := range s.index.ScoresForFusion(query, candidateIds, topK) {
			keywordRanking = append(keywordRanking, fusion.Ranked{Id: hit.Id, Score: hit.Score})
		}
	}

	fused := fusion.CombineScores(keywordRanking, candidates, s.keywordWeight, true)
	if topK > 0 && len(fused) > topK {
		fused = fused[:topK]
	}
	return fused, nil
}
