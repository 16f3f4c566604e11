package dedup

import (
	"fmt"
	"testing"

	"github.com/poiesic/newsmill/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStory = "The city council voted on Thursday to approve funding for " +
	"a new light rail line connecting the harbor district with the university " +
	"campus, ending a decade of debate over the corridor. Construction is " +
	"expected to begin next spring and take four years, with the first trains " +
	"running by the end of the decade. Opponents of the project argued the " +
	"money would be better spent expanding the existing bus network, while " +
	"supporters pointed to ridership studies projecting forty thousand daily " +
	"passengers once the line opens. The transit authority said it would hold " +
	"a series of public meetings this autumn to gather feedback on station " +
	"placement along the route before finalizing the engineering contracts. " +
	"Property owners along the corridor have already begun lobbying for stops " +
	"near their parcels, and two neighborhood associations filed comments asking " +
	"for noise barriers beside the elevated sections. Federal matching funds " +
	"cover roughly half the projected cost, with the remainder split between a " +
	"regional sales tax measure approved two years ago and fare revenue bonds " +
	"that the authority expects to issue once construction contracts are signed."

func TestNewDetector(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d, err := New()
		require.NoError(t, err)

		stats := d.Stats()
		assert.Equal(t, DefaultNumHashes, stats.NumHashes)
		assert.Equal(t, DefaultThreshold, stats.Threshold)
		assert.Equal(t, DefaultBands, stats.Bands)
		assert.Equal(t, 0, stats.DocumentsN)
	})

	t.Run("bands must divide hashes", func(t *testing.T) {
		_, err := New(WithNumHashes(100), WithBands(8))
		assert.ErrorIs(t, err, ErrInvalidBands)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		_, err := New(WithThreshold(1.5))
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("invalid hash count", func(t *testing.T) {
		_, err := New(WithNumHashes(0))
		assert.ErrorIs(t, err, ErrInvalidNumHashes)
	})
}

func TestAddDocument(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	d.AddDocument("1", sampleStory)
	assert.Equal(t, 1, d.Stats().DocumentsN)

	sig, ok := d.SignatureFor("1")
	require.True(t, ok)
	assert.Len(t, sig, DefaultNumHashes)

	// Re-adding replaces, not duplicates.
	d.AddDocument("1", sampleStory+" revised")
	assert.Equal(t, 1, d.Stats().DocumentsN)

	_, ok = d.SignatureFor("missing")
	assert.False(t, ok)
}

func TestFindDuplicates(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	n := d.AddDocuments([]core.Document{
		{Id: "1", Text: sampleStory},
		{Id: "2", Text: sampleStory + " Updated 5 minutes ago"},
		{Id: "3", Text: "Completely unrelated piece about a gallery opening downtown."},
	})
	require.Equal(t, 3, n)

	pairs := d.FindDuplicates(nil, 0)
	require.Len(t, pairs, 1)
	assert.Equal(t, "1", pairs[0].Id1)
	assert.Equal(t, "2", pairs[0].Id2)
	assert.GreaterOrEqual(t, pairs[0].Similarity, DefaultThreshold)
}

func TestFindDuplicatesThresholdOverride(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	d.AddDocument("1", "shared words about markets and trading floors")
	d.AddDocument("2", "shared words about markets and trading desks")

	strict := d.FindDuplicates(nil, 0.999)
	loose := d.FindDuplicates(nil, 0.1)
	assert.LessOrEqual(t, len(strict), len(loose))
	require.NotEmpty(t, loose)
}

func TestFindDuplicatesEmptyDocumentsIgnored(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	d.AddDocument("1", "")
	d.AddDocument("2", "   ")

	assert.Empty(t, d.FindDuplicates(nil, 0))
	assert.Empty(t, d.FindDuplicatesLSH(nil))
}

func TestFindDuplicatesLSHMatchesExhaustive(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	stories := []string{
		sampleStory,
		sampleStory + " Updated 5 minutes ago",
		sampleStory + " (Reuters)",
		"The national weather service issued a heat advisory for the valley " +
			"through the weekend, urging residents to limit outdoor activity.",
		"Researchers published a survey of deep sea vents in the southern " +
			"ocean, cataloguing a dozen previously unknown species.",
	}
	for i, text := range stories {
		d.AddDocument(fmt.Sprintf("%d", i+1), text)
	}

	exhaustive := d.FindDuplicates(nil, 0)
	lsh := d.FindDuplicatesLSH(nil)

	// Near-identical stories collide in at least one band, so LSH finds
	// the same pairs in the same order.
	assert.Equal(t, exhaustive, lsh)
	require.NotEmpty(t, lsh)
	for _, pair := range lsh {
		assert.GreaterOrEqual(t, pair.Similarity, DefaultThreshold)
	}
}

func TestFindDuplicatesDeterministicOrder(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	d.AddDocument("b", sampleStory)
	d.AddDocument("a", sampleStory)
	d.AddDocument("c", sampleStory)

	pairs := d.FindDuplicates(nil, 0)
	require.Len(t, pairs, 3)
	// All similarities are 1.0; order falls back to ids.
	assert.Equal(t, "a", pairs[0].Id1)
	assert.Equal(t, "b", pairs[0].Id2)
	assert.Equal(t, "a", pairs[1].Id1)
	assert.Equal(t, "c", pairs[1].Id2)
	assert.Equal(t, "b", pairs[2].Id1)
	assert.Equal(t, "c", pairs[2].Id2)
}

func TestFindDuplicatesScopedToIds(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	d.AddDocuments([]core.Document{
		{Id: "1", Text: sampleStory},
		{Id: "2", Text: sampleStory + " Updated 5 minutes ago"},
		{Id: "3", Text: "Completely unrelated piece about a gallery opening downtown."},
		{Id: "4", Text: sampleStory + " Updated 9 minutes ago"},
	})

	t.Run("exhaustive", func(t *testing.T) {
		pairs := d.FindDuplicates([]string{"2"}, 0)
		require.Len(t, pairs, 2)
		for _, pair := range pairs {
			assert.True(t, pair.Id1 == "2" || pair.Id2 == "2")
		}
	})

	t.Run("lsh probes batch against whole corpus", func(t *testing.T) {
		pairs := d.FindDuplicatesLSH([]string{"2"})
		require.Len(t, pairs, 2)
		for _, pair := range pairs {
			assert.True(t, pair.Id1 == "2" || pair.Id2 == "2")
		}
	})

	t.Run("unknown ids ignored", func(t *testing.T) {
		assert.Empty(t, d.FindDuplicates([]string{"missing"}, 0))
		assert.Empty(t, d.FindDuplicatesLSH([]string{"missing"}))
	})

	t.Run("nil scans everything", func(t *testing.T) {
		// Pairs (1,2), (1,4) and (2,4).
		assert.Len(t, d.FindDuplicates(nil, 0), 3)
		assert.Len(t, d.FindDuplicatesLSH(nil), 3)
	})
}

func TestAddDocumentReplacesBuckets(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	d.AddDocument("1", sampleStory)
	d.AddDocument("2", sampleStory+" Updated 5 minutes ago")
	require.Len(t, d.FindDuplicatesLSH(nil), 1)

	// Replacing a document's text must also retire its old buckets.
	d.AddDocument("1", "A short dispatch about migratory birds crossing the estuary.")
	assert.Empty(t, d.FindDuplicates(nil, 0))
	assert.Empty(t, d.FindDuplicatesLSH(nil))
}

func TestFindDuplicatesLSHAcrossSeeds(t *testing.T) {
	seeds := []uint64{3, 17, 42, 99, 123}
	complete := 0

	for _, seed := range seeds {
		d, err := New(WithSeed(seed))
		require.NoError(t, err)

		d.AddDocuments([]core.Document{
			{Id: "1", Text: sampleStory},
			{Id: "2", Text: sampleStory},
			{Id: "3", Text: sampleStory + " Updated 5 minutes ago"},
			{Id: "4", Text: "A profile of the orchestra's incoming conductor and her repertoire."},
		})

		exhaustive := d.FindDuplicates(nil, 0)
		require.Len(t, exhaustive, 3, "seed %d", seed)

		lsh := d.FindDuplicatesLSH(nil)

		// Identical texts share every band, so their pair can never be
		// missed, whatever the seed.
		found := false
		for _, pair := range lsh {
			if pair.Id1 == "1" && pair.Id2 == "2" {
				found = true
			}
		}
		assert.True(t, found, "seed %d", seed)

		// LSH never invents pairs the exhaustive scan would not report.
		assert.Subset(t, exhaustive, lsh, "seed %d", seed)
		if len(lsh) == len(exhaustive) {
			complete++
		}
	}

	// Band collisions are probabilistic for the near-duplicate pairs,
	// so allow a single seed to miss them.
	assert.GreaterOrEqual(t, complete, len(seeds)-1)
}

func TestClear(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	d.AddDocument("1", sampleStory)
	d.Clear()

	assert.Equal(t, 0, d.Stats().DocumentsN)
	assert.Empty(t, d.FindDuplicates(nil, 0))
	_, ok := d.SignatureFor("1")
	assert.False(t, ok)
}
