package cluster

import (
	"log/slog"

	"github.com/poiesic/newsmill/core"
)

// Default density parameters.
const (
	DefaultMinClusterSize = 5
	DefaultMinSamples     = 3
)

// DefaultNoiseThreshold is the outlier score above which a clustered
// article is still reported alongside true noise.
const DefaultNoiseThreshold = 0.7

// Stats describes the last fit.
type Stats struct {
	Fitted         bool
	NClusters      int
	NNoise         int
	NoiseRatio     float64
	MinClusterSize int
	MinSamples     int
	Backend        string
}

// Clusterer fits density clusters over article embeddings and caches
// the result for ClusterInfo and NoiseArticles. Not safe for
// concurrent use.
type Clusterer struct {
	cfg      Config
	backends []Backend
	logger   *slog.Logger

	fitted        bool
	labels        []int
	outlierScores []float64
	nClusters     int
	nNoise        int
	usedBackend   string
}

// Option configures a Clusterer.
type Option func(*Clusterer) error

// WithMinClusterSize sets the smallest group that counts as a cluster.
// Default is DefaultMinClusterSize.
func WithMinClusterSize(size int) Option {
	return func(c *Clusterer) error {
		if size < 2 {
			return ErrInvalidMinClusterSize
		}
		c.cfg.MinClusterSize = size
		return nil
	}
}

// WithMinSamples sets the density threshold.
// Default is DefaultMinSamples.
func WithMinSamples(samples int) Option {
	return func(c *Clusterer) error {
		if samples < 1 {
			return ErrInvalidMinSamples
		}
		c.cfg.MinSamples = samples
		return nil
	}
}

// WithClusterSelectionEpsilon sets the merge distance below which the
// dendrogram is never cut.
// Default is 0.
func WithClusterSelectionEpsilon(epsilon float64) Option {
	return func(c *Clusterer) error {
		c.cfg.ClusterSelectionEpsilon = epsilon
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Clusterer) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a clusterer with the full backend chain: hierarchical,
// then fixed-radius density, then degenerate.
func New(opts ...Option) (*Clusterer, error) {
	c := &Clusterer{
		cfg: Config{
			MinClusterSize: DefaultMinClusterSize,
			MinSamples:     DefaultMinSamples,
		},
		backends: []Backend{
			hierarchicalBackend{},
			dbscanBackend{},
			degenerateBackend{},
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// FitPredict clusters the embeddings and returns one label per point,
// -1 for noise. A corpus smaller than the minimum cluster size is a
// single cluster by definition; it is logged and labeled all zero
// without touching the backends. The fit is cached for ClusterInfo,
// NoiseArticles and Stats.
func (c *Clusterer) FitPredict(embeddings [][]float32) []int {
	n := len(embeddings)

	if n < c.cfg.MinClusterSize {
		c.logger.Warn("too few articles for clustering, treating as one cluster",
			"articles", n, "min_cluster_size", c.cfg.MinClusterSize)
		c.cache(&Result{
			Labels:        make([]int, n),
			OutlierScores: make([]float64, n),
		}, "undersized")
		return c.labels
	}

	for _, backend := range c.backends {
		result, err := backend.Cluster(embeddings, c.cfg)
		if err != nil {
			c.logger.Warn("clustering backend failed, trying next",
				"backend", backend.Name(), "err", err)
			continue
		}
		c.cache(result, backend.Name())
		c.logger.Info("clustering finished",
			"backend", backend.Name(),
			"articles", n,
			"clusters", c.nClusters,
			"noise", c.nNoise)
		return c.labels
	}

	// Unreachable: the degenerate backend never fails.
	c.cache(&Result{
		Labels:        make([]int, n),
		OutlierScores: make([]float64, n),
	}, "degenerate")
	return c.labels
}

func (c *Clusterer) cache(result *Result, backend string) {
	c.labels = result.Labels
	c.outlierScores = result.OutlierScores
	c.usedBackend = backend
	c.fitted = true

	seen := make(map[int]struct{})
	c.nNoise = 0
	for _, label := range result.Labels {
		if label == -1 {
			c.nNoise++
			continue
		}
		seen[label] = struct{}{}
	}
	c.nClusters = len(seen)
}

// Labels returns the cached labels from the last fit.
func (c *Clusterer) Labels() []int {
	return c.labels
}

// ClusterInfo summarizes each cluster of the last fit: member ids,
// centroid, size and a coherence score derived from the members'
// outlier scores. Noise points are not part of any summary. The
// embeddings and ids must be the ones passed to FitPredict.
func (c *Clusterer) ClusterInfo(embeddings [][]float32, articleIds []string) ([]core.ClusterSummary, error) {
	if !c.fitted {
		return nil, ErrNotFitted
	}
	if len(embeddings) != len(articleIds) || len(embeddings) != len(c.labels) {
		return nil, ErrLengthMismatch
	}

	members := make(map[int][]int)
	for i, label := range c.labels {
		if label == -1 {
			continue
		}
		members[label] = append(members[label], i)
	}

	summaries := make([]core.ClusterSummary, 0, len(members))
	for label := 0; label < c.nClusters; label++ {
		idxs := members[label]
		if len(idxs) == 0 {
			continue
		}

		ids := make([]string, len(idxs))
		vectors := make([][]float32, len(idxs))
		outlierSum := 0.0
		for i, idx := range idxs {
			ids[i] = articleIds[idx]
			vectors[i] = embeddings[idx]
			outlierSum += c.outlierScores[idx]
		}

		avgOutlier := outlierSum / float64(len(idxs))
		summaries = append(summaries, core.ClusterSummary{
			ClusterId:      label,
			ArticleIds:     ids,
			Centroid:       core.MeanVector(vectors),
			Size:           len(idxs),
			CoherenceScore: 1.0 - min(avgOutlier, 1.0),
		})
	}

	return summaries, nil
}

// NoiseArticles lists articles labeled noise plus clustered articles
// whose outlier score reaches the threshold. Before any fit it
// returns nothing.
func (c *Clusterer) NoiseArticles(articleIds []string, threshold float64) []core.NoiseArticle {
	if !c.fitted || len(articleIds) != len(c.labels) {
		return nil
	}

	var noise []core.NoiseArticle
	for i, label := range c.labels {
		score := c.outlierScores[i]
		if label == -1 || score >= threshold {
			noise = append(noise, core.NoiseArticle{
				ArticleId:    articleIds[i],
				OutlierScore: score,
				IsNoise:      label == -1,
			})
		}
	}
	return noise
}

// Stats returns counters describing the last fit.
func (c *Clusterer) Stats() Stats {
	stats := Stats{
		Fitted:         c.fitted,
		NClusters:      c.nClusters,
		NNoise:         c.nNoise,
		MinClusterSize: c.cfg.MinClusterSize,
		MinSamples:     c.cfg.MinSamples,
		Backend:        c.usedBackend,
	}
	if len(c.labels) > 0 {
		stats.NoiseRatio = float64(c.nNoise) / float64(len(c.labels))
	}
	return stats
}
