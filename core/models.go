package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from content so that re-ingesting the same article
// produces the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID in the decimal form used as the document identifier
// by the retrieval components, which key corpora by string ids.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses the decimal string form produced by ID.String.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// Article represents a single fetched news article.
// It may be enriched with an embedding vector during processing.
type Article struct {
	Id          ID
	Source      string
	Title       string
	Text        string
	URL         string
	PublishedAt time.Time // When the article was originally published
	InsertedAt  time.Time // When the article was inserted into the database
	UpdatedAt   time.Time // When the article was last updated
	Vector      []float32 // Embedding vector for semantic search (populated by processors)
	Metadata    map[string]string
}

// Document is the minimal (id, text) record the retrieval components
// operate on. Identity is the Id; Text is never mutated after indexing.
type Document struct {
	Id   string
	Text string
}

// DocumentFromArticle builds the indexing document for an article.
// Title and body are concatenated so headline terms are searchable.
func DocumentFromArticle(a *Article) Document {
	text := a.Text
	if a.Title != "" {
		if text != "" {
			text = a.Title + " " + text
		} else {
			text = a.Title
		}
	}
	return Document{Id: a.Id.String(), Text: text}
}

// SearchResult represents a vector similarity match with the full article.
type SearchResult struct {
	Article *Article
	Score   float32
}

// FusedResult is a hybrid search result. The per-source scores are kept
// alongside the fused score so callers can explain a ranking.
type FusedResult struct {
	Article     *Article
	FusedScore  float64
	Bm25Score   float64
	VectorScore float64
}

// DuplicatePair records two articles whose estimated Jaccard similarity
// met the near-duplicate threshold.
type DuplicatePair struct {
	Id1        string
	Id2        string
	Similarity float64
}

// ClusterSummary describes one topic cluster produced by the clusterer.
// ClusterId is never -1; noise points are reported separately.
type ClusterSummary struct {
	ClusterId      int
	ArticleIds     []string
	Centroid       []float32
	Size           int
	CoherenceScore float64
}

// NoiseArticle flags an article as noise or a likely outlier.
// IsNoise is the strict label-based sense (cluster label -1); articles
// included only because their outlier score met the caller's threshold
// have IsNoise false.
type NoiseArticle struct {
	ArticleId    string
	OutlierScore float64
	IsNoise      bool
}

// ClusterSnapshot is the serializable result of one clustering run,
// written by the recluster job and read back for topic reporting.
type ClusterSnapshot struct {
	CreatedAt time.Time
	NClusters int
	NNoise    int
	Clusters  []ClusterSummary
	Noise     []NoiseArticle
}
