package cluster

import "math"

// Config carries the density parameters shared by every backend.
type Config struct {
	MinClusterSize          int
	MinSamples              int
	ClusterSelectionEpsilon float64
}

// Result is a backend's labeling of the input points. Labels and
// OutlierScores are parallel to the embeddings; -1 marks noise.
type Result struct {
	Labels        []int
	OutlierScores []float64
}

// Backend is one clustering strategy. Implementations must be
// deterministic for identical inputs.
type Backend interface {
	Name() string
	Cluster(embeddings [][]float32, cfg Config) (*Result, error)
}

// euclidean computes the Euclidean distance between two embeddings of
// equal dimension.
func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// distanceMatrix precomputes all pairwise distances.
func distanceMatrix(embeddings [][]float32) [][]float64 {
	n := len(embeddings)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(embeddings[i], embeddings[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// relabel renumbers cluster labels so that cluster ids follow the
// order of each cluster's first member, starting at 0. Noise stays -1.
func relabel(labels []int) []int {
	next := 0
	mapping := make(map[int]int)
	out := make([]int, len(labels))
	for i, label := range labels {
		if label == -1 {
			out[i] = -1
			continue
		}
		id, ok := mapping[label]
		if !ok {
			id = next
			mapping[label] = id
			next++
		}
		out[i] = id
	}
	return out
}

// degenerateBackend puts every point in a single cluster. It cannot
// fail and terminates the backend chain.
type degenerateBackend struct{}

func (degenerateBackend) Name() string { return "degenerate" }

func (degenerateBackend) Cluster(embeddings [][]float32, _ Config) (*Result, error) {
	return &Result{
		Labels:        make([]int, len(embeddings)),
		OutlierScores: make([]float64, len(embeddings)),
	}, nil
}
