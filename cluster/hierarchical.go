package cluster

import (
	"fmt"
	"math"
	"slices"
)

// minGapRatio is the smallest relative jump between consecutive merge
// distances that counts as a density gap worth cutting at. Below it
// the corpus is treated as one cluster.
const minGapRatio = 1.5

// hierarchicalBackend clusters by single linkage over mutual
// reachability distances, the density transform used by HDBSCAN: the
// distance between two points is floored at both their core distances,
// which pushes sparse points away from everything. The dendrogram is
// cut at the largest relative gap in merge distances; connected
// components above the minimum size become clusters, the rest noise.
type hierarchicalBackend struct{}

func (hierarchicalBackend) Name() string { return "hierarchical" }

func (hierarchicalBackend) Cluster(embeddings [][]float32, cfg Config) (*Result, error) {
	n := len(embeddings)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 points, got %d", n)
	}

	dist := distanceMatrix(embeddings)
	core := coreDistances(dist, cfg.MinSamples)

	edges := minimumSpanningTree(dist, core)

	cutoff := gapCutoff(edges, cfg.ClusterSelectionEpsilon)
	labels := componentLabels(n, edges, cutoff, cfg.MinClusterSize)

	return &Result{
		Labels:        labels,
		OutlierScores: outlierScores(n, edges, cutoff),
	}, nil
}

// coreDistances returns, per point, the distance to its minSamples-th
// nearest neighbor with the point itself counted as the first. Small
// corpora fall back to the farthest available neighbor.
func coreDistances(dist [][]float64, minSamples int) []float64 {
	n := len(dist)
	k := minSamples - 1
	if k < 1 {
		return make([]float64, n)
	}
	if k > n-1 {
		k = n - 1
	}

	core := make([]float64, n)
	for i := 0; i < n; i++ {
		neighbors := make([]float64, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				neighbors = append(neighbors, dist[i][j])
			}
		}
		slices.Sort(neighbors)
		core[i] = neighbors[k-1]
	}
	return core
}

// mstEdge is one edge of the mutual reachability spanning tree.
type mstEdge struct {
	from, to int
	weight   float64
}

// minimumSpanningTree runs Prim's algorithm over mutual reachability
// distances. O(n²), which is fine at personal-corpus scale.
func minimumSpanningTree(dist [][]float64, core []float64) []mstEdge {
	n := len(dist)
	inTree := make([]bool, n)
	bestDist := make([]float64, n)
	bestFrom := make([]int, n)
	for i := range bestDist {
		bestDist[i] = math.Inf(1)
		bestFrom[i] = -1
	}

	edges := make([]mstEdge, 0, n-1)
	current := 0
	inTree[0] = true

	for len(edges) < n-1 {
		for j := 0; j < n; j++ {
			if inTree[j] || j == current {
				continue
			}
			w := mutualReachability(dist, core, current, j)
			if w < bestDist[j] {
				bestDist[j] = w
				bestFrom[j] = current
			}
		}

		next := -1
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			if next == -1 || bestDist[j] < bestDist[next] {
				next = j
			}
		}

		edges = append(edges, mstEdge{from: bestFrom[next], to: next, weight: bestDist[next]})
		inTree[next] = true
		current = next
	}

	return edges
}

func mutualReachability(dist [][]float64, core []float64, i, j int) float64 {
	return math.Max(dist[i][j], math.Max(core[i], core[j]))
}

// gapCutoff finds the merge distance below the largest relative jump
// in the sorted MST edge weights. A jump only qualifies when it is
// both large relative to the weight below it (minGapRatio) and larger
// than the mean merge distance, so the stepwise growth of an evenly
// spread corpus is not mistaken for a density gap. Edges at or below
// epsilon are never cut. Returns the largest edge weight (no cut)
// when no jump qualifies.
func gapCutoff(edges []mstEdge, epsilon float64) float64 {
	weights := make([]float64, len(edges))
	sum := 0.0
	for i, e := range edges {
		weights[i] = e.weight
		sum += e.weight
	}
	slices.Sort(weights)
	mean := sum / float64(len(weights))

	maxWeight := weights[len(weights)-1]
	bestRatio := 0.0
	cutoff := maxWeight

	for i := 0; i+1 < len(weights); i++ {
		lo, hi := weights[i], weights[i+1]
		if hi <= epsilon || hi-lo <= mean {
			continue
		}
		var ratio float64
		if lo == 0 {
			ratio = math.Inf(1)
		} else {
			ratio = hi / lo
		}
		if ratio > bestRatio {
			bestRatio = ratio
			cutoff = lo
		}
	}

	if bestRatio < minGapRatio {
		return maxWeight
	}
	return cutoff
}

// componentLabels cuts the tree at the cutoff and labels the resulting
// components. Components smaller than minClusterSize become noise.
func componentLabels(n int, edges []mstEdge, cutoff float64, minClusterSize int) []int {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for _, e := range edges {
		if e.weight > cutoff {
			continue
		}
		ra, rb := find(e.from), find(e.to)
		if ra != rb {
			parent[ra] = rb
		}
	}

	sizes := make(map[int]int)
	for i := 0; i < n; i++ {
		sizes[find(i)]++
	}

	labels := make([]int, n)
	for i := 0; i < n; i++ {
		if sizes[find(i)] >= minClusterSize {
			labels[i] = find(i)
		} else {
			labels[i] = -1
		}
	}
	return relabel(labels)
}

// outlierScores scores each point by how far beyond the cutoff its
// cheapest connection lies. Points that merge at or below the cutoff
// score 0; a point twice as far as the cutoff scores 0.5, approaching
// 1 as its isolation grows.
func outlierScores(n int, edges []mstEdge, cutoff float64) []float64 {
	merge := make([]float64, n)
	for i := range merge {
		merge[i] = math.Inf(1)
	}
	for _, e := range edges {
		if e.weight < merge[e.from] {
			merge[e.from] = e.weight
		}
		if e.weight < merge[e.to] {
			merge[e.to] = e.weight
		}
	}

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		if merge[i] <= cutoff || merge[i] == 0 {
			continue
		}
		if cutoff == 0 {
			scores[i] = 1
			continue
		}
		scores[i] = 1 - cutoff/merge[i]
	}
	return scores
}
