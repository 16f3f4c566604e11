package fusion

import (
	"slices"
	"strings"
)

// DefaultK is the standard reciprocal rank fusion constant. Larger
// values flatten the difference between adjacent ranks.
const DefaultK = 60

// DefaultKeywordWeight is the keyword share in weighted combination.
// The vector side receives the complement.
const DefaultKeywordWeight = 0.5

// Method selects a fusion strategy.
type Method string

const (
	// MethodRRF fuses by reciprocal rank.
	MethodRRF Method = "rrf"
	// MethodWeighted fuses by normalized weighted scores.
	MethodWeighted Method = "weighted"
)

// Ranked is one entry of a ranked result list.
type Ranked struct {
	Id    string
	Score float64
}

// ReciprocalRankFusion merges any number of rankings. Each document
// receives the sum of 1/(k+rank) over the rankings it appears in,
// with ranks starting at 1; rankings that omit the document add
// nothing. Output is sorted by fused score descending, id ascending
// on ties. A non-positive k falls back to DefaultK.
func ReciprocalRankFusion(rankings [][]Ranked, k int) []Ranked {
	if k <= 0 {
		k = DefaultK
	}

	fused := make(map[string]float64)
	for _, ranking := range rankings {
		for i, entry := range ranking {
			fused[entry.Id] += 1.0 / float64(k+i+1)
		}
	}

	return sortFused(fused)
}

// CombineScores blends a keyword ranking and a vector ranking into one
// list. When normalize is true each list is min-max scaled to [0,1]
// first; lists that are empty or carry a single constant score are
// left untouched, since scaling them is undefined. A document missing
// from one list contributes 0 for that side. keywordWeight 0 means
// vector-only and 1 keyword-only; a weight outside [0,1] falls back
// to DefaultKeywordWeight.
func CombineScores(keyword, vector []Ranked, keywordWeight float64, normalize bool) []Ranked {
	if keywordWeight < 0 || keywordWeight > 1 {
		keywordWeight = DefaultKeywordWeight
	}

	if normalize {
		keyword = minMaxNormalize(keyword)
		vector = minMaxNormalize(vector)
	}

	fused := make(map[string]float64)
	for _, entry := range keyword {
		fused[entry.Id] += keywordWeight * entry.Score
	}
	for _, entry := range vector {
		fused[entry.Id] += (1 - keywordWeight) * entry.Score
	}

	return sortFused(fused)
}

// minMaxNormalize scales scores to [0,1]. Returns the input unchanged
// when the list is empty or all scores are equal.
func minMaxNormalize(ranking []Ranked) []Ranked {
	if len(ranking) == 0 {
		return ranking
	}

	minScore, maxScore := ranking[0].Score, ranking[0].Score
	for _, entry := range ranking[1:] {
		if entry.Score < minScore {
			minScore = entry.Score
		}
		if entry.Score > maxScore {
			maxScore = entry.Score
		}
	}
	if maxScore == minScore {
		return ranking
	}

	scaled := make([]Ranked, len(ranking))
	span := maxScore - minScore
	for i, entry := range ranking {
		scaled[i] = Ranked{Id: entry.Id, Score: (entry.Score - minScore) / span}
	}
	return scaled
}

// sortFused turns the fused score map into a deterministic list.
func sortFused(fused map[string]float64) []Ranked {
	results := make([]Ranked, 0, len(fused))
	for id, score := range fused {
		results = append(results, Ranked{Id: id, Score: score})
	}

	slices.SortFunc(results, func(a, b Ranked) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return strings.Compare(a.Id, b.Id)
		}
	})

	return results
}
