package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShingles(t *testing.T) {
	t.Run("basic text", func(t *testing.T) {
		shingles := Shingles("hello world")
		assert.Len(t, shingles, 7)
		assert.Contains(t, shingles, "hello")
		assert.Contains(t, shingles, "o wor")
	})

	t.Run("lowercased and trimmed", func(t *testing.T) {
		assert.Equal(t, Shingles("hello world"), Shingles("  HELLO World  "))
	})

	t.Run("short text becomes one shingle", func(t *testing.T) {
		shingles := Shingles("cat")
		require.Len(t, shingles, 1)
		assert.Contains(t, shingles, "cat")
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, Shingles(""))
		assert.Empty(t, Shingles("   "))
	})

	t.Run("multibyte runes count as one", func(t *testing.T) {
		// Five runes exactly: one shingle.
		shingles := Shingles("héllo")
		require.Len(t, shingles, 1)
		assert.Contains(t, shingles, "héllo")
	})
}

func TestSignatureDeterministic(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	text := "the quick brown fox jumps over the lazy dog"
	sig1 := d.ComputeSignature(text)
	sig2 := d.ComputeSignature(text)

	require.Len(t, sig1, DefaultNumHashes)
	assert.Equal(t, sig1, sig2)
}

func TestSignatureSeedDependence(t *testing.T) {
	d1, err := New()
	require.NoError(t, err)
	d2, err := New(WithSeed(7))
	require.NoError(t, err)

	text := "seeded hashing produces different sketches"
	assert.NotEqual(t, d1.ComputeSignature(text), d2.ComputeSignature(text))
}

func TestEstimateJaccardIdentical(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	sig := d.ComputeSignature("identical article text for self comparison")
	assert.Equal(t, 1.0, EstimateJaccard(sig, sig))
}

func TestEstimateJaccardSymmetric(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	a := d.ComputeSignature("stock markets rallied sharply on tuesday")
	b := d.ComputeSignature("stock markets dropped sharply on tuesday")

	assert.Equal(t, EstimateJaccard(a, b), EstimateJaccard(b, a))
}

func TestEstimateJaccardBounds(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	a := d.ComputeSignature("completely different content about gardening")
	b := d.ComputeSignature("satellite launch delayed by weather again")

	sim := EstimateJaccard(a, b)
	assert.GreaterOrEqual(t, sim, 0.0)
	assert.LessOrEqual(t, sim, 1.0)
}

func TestEstimateJaccardUnequalLengths(t *testing.T) {
	d128, err := New()
	require.NoError(t, err)
	d64, err := New(WithNumHashes(64))
	require.NoError(t, err)

	text := "same text sketched at two lengths"
	assert.Equal(t, 0.0, EstimateJaccard(d128.ComputeSignature(text), d64.ComputeSignature(text)))
}

func TestEmptyDocumentsNeverSimilar(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	empty1 := d.ComputeSignature("")
	empty2 := d.ComputeSignature("   ")
	real := d.ComputeSignature("an actual article body")

	// Blank articles are never duplicates, not even of each other.
	assert.Equal(t, 0.0, EstimateJaccard(empty1, empty2))
	assert.Equal(t, 0.0, EstimateJaccard(empty1, empty1))
	assert.Equal(t, 0.0, EstimateJaccard(empty1, real))
}

func TestNearDuplicateAboveThreshold(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	base := "Scientists announced today a major breakthrough in battery technology " +
		"that could double the range of electric vehicles within five years. " +
		"The research team demonstrated a solid-state cell that retains ninety " +
		"percent of its capacity after two thousand charge cycles, a figure that " +
		"far exceeds current lithium-ion designs. Industry analysts cautioned " +
		"that manufacturing the new cells at scale remains an open problem, but " +
		"several automakers have already signed agreements to evaluate the " +
		"technology in prototype vehicles over the coming eighteen months."
	edited := base + " Updated 5 minutes ago"

	sim := EstimateJaccard(d.ComputeSignature(base), d.ComputeSignature(edited))
	assert.GreaterOrEqual(t, sim, DefaultThreshold)
}
