package dedup

import (
	"math"

	"github.com/poiesic/newsmill/core"
)

// Default MinHash parameters.
const (
	DefaultNumHashes = 128
	DefaultSeed      = 42
)

// LCG constants for deriving the hash function family from the seed.
const (
	multA = 6364136223846793005
	incA  = 1442695040888963407
	multB = 3410719502
	incB  = 3141592653
)

// emptySlot marks every position of an empty-document signature.
const emptySlot = math.MaxUint64

// Signature is a fixed-length MinHash sketch of a document's shingle
// set. Two signatures of equal length agree per slot with probability
// equal to the Jaccard similarity of the underlying sets.
type Signature []uint64

// hashFamily holds the affine parameters of the signature's hash
// functions, derived once from the seed.
type hashFamily struct {
	a []uint64
	b []uint64
}

func newHashFamily(numHashes int, seed uint64) hashFamily {
	family := hashFamily{
		a: make([]uint64, numHashes),
		b: make([]uint64, numHashes),
	}
	for i := 0; i < numHashes; i++ {
		hs := seed + uint64(i)
		family.a[i] = hs*multA + incA
		family.b[i] = hs*multB + incB
	}
	return family
}

// signature sketches the shingle set. Each slot holds the minimum of
// one affine hash function over the content hashes of all shingles.
// An empty set produces the all-emptySlot sentinel.
func (f hashFamily) signature(shingles map[string]struct{}) Signature {
	n := len(f.a)
	sig := make(Signature, n)
	for i := range sig {
		sig[i] = emptySlot
	}
	if len(shingles) == 0 {
		return sig
	}

	for shingle := range shingles {
		h := uint64(core.IDFromContent(shingle))
		for i := 0; i < n; i++ {
			v := f.a[i]*h + f.b[i]
			if v < sig[i] {
				sig[i] = v
			}
		}
	}
	return sig
}

// empty reports whether the signature is the empty-document sentinel.
func (s Signature) empty() bool {
	for _, v := range s {
		if v != emptySlot {
			return false
		}
	}
	return true
}

// EstimateJaccard estimates Jaccard similarity as the fraction of
// agreeing slots. Signatures of different lengths compare as 0, as do
// empty-document sentinels, even against each other.
func EstimateJaccard(a, b Signature) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	if a.empty() || b.empty() {
		return 0
	}

	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}
