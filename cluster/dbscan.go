package cluster

import "fmt"

// dbscanEps is the neighborhood radius of the fallback backend, tuned
// for unit-normalized embeddings where Euclidean distance tracks
// cosine distance (0.25 ≈ a 0.75 cosine similarity floor).
const dbscanEps = 0.25

// dbscanBackend is the fixed-radius density fallback. Unlike the
// hierarchical backend it uses a single global radius, so it misses
// clusters of varying density, but it has no tunable dendrogram step
// to go wrong.
type dbscanBackend struct{}

func (dbscanBackend) Name() string { return "dbscan" }

func (dbscanBackend) Cluster(embeddings [][]float32, cfg Config) (*Result, error) {
	n := len(embeddings)
	if n == 0 {
		return nil, fmt.Errorf("no points to cluster")
	}

	dist := distanceMatrix(embeddings)

	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dist[i][j] <= dbscanEps {
				neighbors[i] = append(neighbors[i], j)
			}
		}
	}

	// Core points have at least minSamples neighbors, themselves included.
	isCore := make([]bool, n)
	for i := 0; i < n; i++ {
		isCore[i] = len(neighbors[i]) >= cfg.MinSamples
	}

	const unvisited = -2
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	nextLabel := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisited || !isCore[i] {
			continue
		}

		// Expand a new cluster from this core point.
		labels[i] = nextLabel
		queue := append([]int(nil), neighbors[i]...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] != unvisited {
				continue
			}
			labels[j] = nextLabel
			if isCore[j] {
				queue = append(queue, neighbors[j]...)
			}
		}
		nextLabel++
	}

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		if labels[i] == unvisited {
			labels[i] = -1
		}
		// Coarse scores: noise certain, border points half way.
		switch {
		case labels[i] == -1:
			scores[i] = 1.0
		case !isCore[i]:
			scores[i] = 0.5
		}
	}

	// Enforce the minimum cluster size after expansion.
	sizes := make(map[int]int)
	for _, label := range labels {
		if label != -1 {
			sizes[label]++
		}
	}
	for i, label := range labels {
		if label != -1 && sizes[label] < cfg.MinClusterSize {
			labels[i] = -1
			scores[i] = 1.0
		}
	}

	return &Result{Labels: relabel(labels), OutlierScores: scores}, nil
}
