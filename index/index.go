package index

import (
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/poiesic/newsmill/core"
)

// Default BM25 parameters (Okapi variant, tuned for short news text).
const (
	DefaultK1      = 1.6
	DefaultB       = 0.7
	DefaultEpsilon = 0.25
)

// previewRunes caps the stored document preview length.
const previewRunes = 200

// Result is a scored keyword match.
type Result struct {
	Id        string
	Score     float64
	DocLength int
	Preview   string
}

// Stats describes the current state of the index.
type Stats struct {
	Built        bool
	DocumentsN   int
	VocabularyN  int
	AvgDocLength float64
}

// Index is an in-memory Okapi BM25 index. Build replaces the whole
// corpus; there is no incremental update path.
type Index struct {
	k1      float64
	b       float64
	epsilon float64
	logger  *slog.Logger

	built     bool
	docIds    []string
	termFreqs []map[string]int
	docLens   []int
	previews  []string
	avgDocLen float64
	idf       map[string]float64
}

// Option configures an Index.
type Option func(*Index) error

// WithK1 sets the term frequency saturation parameter.
// Default is DefaultK1.
func WithK1(k1 float64) Option {
	return func(idx *Index) error {
		idx.k1 = k1
		return nil
	}
}

// WithB sets the document length normalization parameter.
// Default is DefaultB.
func WithB(b float64) Option {
	return func(idx *Index) error {
		idx.b = b
		return nil
	}
}

// WithEpsilon sets the floor factor applied to negative IDF values.
// Default is DefaultEpsilon.
func WithEpsilon(epsilon float64) Option {
	return func(idx *Index) error {
		idx.epsilon = epsilon
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger
		return nil
	}
}

// New creates an empty index. Search against an unbuilt index returns
// no results.
func New(opts ...Option) (*Index, error) {
	idx := &Index{
		k1:      DefaultK1,
		b:       DefaultB,
		epsilon: DefaultEpsilon,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// Tokenize splits text into lowercase whitespace-delimited tokens.
// No stemming and no stop-word removal; exact token match only.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Build indexes the given documents, replacing any previous corpus in
// one step. Documents that tokenize to nothing still occupy a corpus
// position with a zero score. A corpus with no tokens at all is
// rejected: the previous index state is kept and Build returns 0.
func (idx *Index) Build(docs []core.Document) int {
	termFreqs := make([]map[string]int, len(docs))
	docLens := make([]int, len(docs))
	docIds := make([]string, len(docs))
	previews := make([]string, len(docs))
	docFreq := make(map[string]int)

	totalLen := 0
	for i, doc := range docs {
		tokens := Tokenize(doc.Text)
		docLens[i] = len(tokens)
		totalLen += len(tokens)
		docIds[i] = doc.Id
		previews[i] = preview(doc.Text)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for tok := range tf {
			docFreq[tok]++
		}
		termFreqs[i] = tf
	}

	if totalLen == 0 {
		idx.logger.Warn("keyword index rebuild skipped, corpus has no tokens",
			"documents", len(docs))
		return 0
	}

	idx.docIds = docIds
	idx.termFreqs = termFreqs
	idx.docLens = docLens
	idx.previews = previews
	idx.avgDocLen = float64(totalLen) / float64(len(docs))
	idx.idf = computeIDF(docFreq, len(docs), idx.epsilon)
	idx.built = true

	idx.logger.Info("keyword index rebuilt",
		"documents", len(docs),
		"vocabulary", len(idx.idf),
		"avg_doc_length", idx.avgDocLen)

	return len(docs)
}

// computeIDF precomputes per-term inverse document frequency. Terms
// common enough to go negative are floored at epsilon times the mean
// IDF so they still rank above non-matches.
func computeIDF(docFreq map[string]int, nDocs int, epsilon float64) map[string]float64 {
	idf := make(map[string]float64, len(docFreq))
	sum := 0.0
	var negative []string

	n := float64(nDocs)
	for term, freq := range docFreq {
		f := float64(freq)
		v := math.Log((n - f + 0.5) / (f + 0.5))
		idf[term] = v
		sum += v
		if v < 0 {
			negative = append(negative, term)
		}
	}

	if len(negative) > 0 {
		floor := epsilon * sum / float64(len(idf))
		for _, term := range negative {
			idf[term] = floor
		}
	}

	return idf
}

// Built reports whether the index holds a committed corpus.
func (idx *Index) Built() bool {
	return idx.built
}

// Stats returns corpus counters for monitoring.
func (idx *Index) Stats() Stats {
	return Stats{
		Built:        idx.built,
		DocumentsN:   len(idx.docIds),
		VocabularyN:  len(idx.idf),
		AvgDocLength: idx.avgDocLen,
	}
}

// Search scores every document against the query and returns up to
// topK results in descending score order. Documents with equal scores
// keep their corpus order. When scoreThreshold is positive, results
// below it are dropped. An empty or unbuilt query returns nothing.
func (idx *Index) Search(query string, topK int, scoreThreshold float64) []Result {
	if !idx.built {
		idx.logger.Warn("keyword search against unbuilt index", "query", query)
		return nil
	}

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		idx.logger.Debug("keyword query tokenized to nothing", "query", query)
		return nil
	}

	scores := idx.scoreAll(tokens)

	results := make([]Result, 0, len(scores))
	for i, score := range scores {
		if scoreThreshold > 0 && score < scoreThreshold {
			continue
		}
		results = append(results, Result{
			Id:        idx.docIds[i],
			Score:     score,
			DocLength: idx.docLens[i],
			Preview:   idx.previews[i],
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// ScoresForFusion scores the full corpus and filters to candidateIds,
// for rank fusion against an equally filtered vector ranking. A nil or
// empty candidate set means no filter.
func (idx *Index) ScoresForFusion(query string, candidateIds []string, topK int) []Result {
	if !idx.built {
		return nil
	}

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var candidates map[string]struct{}
	if len(candidateIds) > 0 {
		candidates = make(map[string]struct{}, len(candidateIds))
		for _, id := range candidateIds {
			candidates[id] = struct{}{}
		}
	}

	scores := idx.scoreAll(tokens)

	results := make([]Result, 0, len(candidateIds))
	for i, score := range scores {
		if candidates != nil {
			if _, ok := candidates[idx.docIds[i]]; !ok {
				continue
			}
		}
		results = append(results, Result{
			Id:        idx.docIds[i],
			Score:     score,
			DocLength: idx.docLens[i],
			Preview:   idx.previews[i],
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// scoreAll computes the BM25 score of every corpus document for the
// tokenized query.
func (idx *Index) scoreAll(tokens []string) []float64 {
	scores := make([]float64, len(idx.docIds))
	for _, tok := range tokens {
		termIDF, ok := idx.idf[tok]
		if !ok {
			continue
		}
		for i, tf := range idx.termFreqs {
			freq := float64(tf[tok])
			if freq == 0 {
				continue
			}
			norm := 1 - idx.b + idx.b*float64(idx.docLens[i])/idx.avgDocLen
			scores[i] += termIDF * freq * (idx.k1 + 1) / (freq + idx.k1*norm)
		}
	}
	return scores
}

// preview returns the first previewRunes runes of text.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}
