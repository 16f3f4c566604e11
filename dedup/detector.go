package dedup

import (
	"encoding/binary"
	"hash/fnv"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/newsmill/core"
)

// DefaultThreshold is the similarity above which two articles count as
// near-duplicates.
const DefaultThreshold = 0.85

// DefaultBands is the LSH band count; with DefaultNumHashes this gives
// 16 rows per band.
const DefaultBands = 8

// Stats describes a Detector's configuration and corpus size.
type Stats struct {
	DocumentsN int
	NumHashes  int
	Threshold  float64
	Bands      int
}

// Detector indexes MinHash signatures and reports near-duplicate
// pairs. Documents keep their insertion order, which makes every
// query deterministic. Not safe for concurrent mutation.
type Detector struct {
	numHashes int
	threshold float64
	bands     int
	seed      uint64
	family    hashFamily
	logger    *slog.Logger

	docIds     []string
	signatures map[string]Signature
	buckets    map[bandKey]map[string]struct{}
}

// bandKey identifies one LSH bucket: documents sharing a hash within
// the same band land in the same bucket.
type bandKey struct {
	band int
	hash uint64
}

// Option configures a Detector.
type Option func(*Detector) error

// WithNumHashes sets the signature length.
// Default is DefaultNumHashes.
func WithNumHashes(n int) Option {
	return func(d *Detector) error {
		if n <= 0 {
			return ErrInvalidNumHashes
		}
		d.numHashes = n
		return nil
	}
}

// WithThreshold sets the duplicate similarity threshold.
// Default is DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) error {
		if threshold <= 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		d.threshold = threshold
		return nil
	}
}

// WithBands sets the LSH band count. Must divide the hash count.
// Default is DefaultBands.
func WithBands(bands int) Option {
	return func(d *Detector) error {
		if bands <= 0 {
			return ErrInvalidBands
		}
		d.bands = bands
		return nil
	}
}

// WithSeed sets the hash family seed. Signatures from detectors with
// different seeds are not comparable.
// Default is DefaultSeed.
func WithSeed(seed uint64) Option {
	return func(d *Detector) error {
		d.seed = seed
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// New creates an empty detector.
func New(opts ...Option) (*Detector, error) {
	d := &Detector{
		numHashes:  DefaultNumHashes,
		threshold:  DefaultThreshold,
		bands:      DefaultBands,
		seed:       DefaultSeed,
		logger:     slog.Default(),
		signatures: make(map[string]Signature),
		buckets:    make(map[bandKey]map[string]struct{}),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.numHashes%d.bands != 0 {
		return nil, ErrInvalidBands
	}

	d.family = newHashFamily(d.numHashes, d.seed)
	return d, nil
}

// ComputeSignature sketches text without adding it to the corpus.
func (d *Detector) ComputeSignature(text string) Signature {
	return d.family.signature(Shingles(text))
}

// AddDocument indexes a document. Re-adding an id replaces its
// signature but keeps its original position.
func (d *Detector) AddDocument(id, text string) {
	if old, exists := d.signatures[id]; exists {
		d.unbucket(id, old)
	} else {
		d.docIds = append(d.docIds, id)
	}

	sig := d.ComputeSignature(text)
	d.signatures[id] = sig
	d.bucket(id, sig)
}

// bandKeys slices a signature into its per-band bucket keys.
func (d *Detector) bandKeys(sig Signature) []bandKey {
	rowsPerBand := d.numHashes / d.bands
	keys := make([]bandKey, d.bands)
	for band := 0; band < d.bands; band++ {
		start := band * rowsPerBand
		keys[band] = bandKey{band: band, hash: bandHash(sig[start : start+rowsPerBand])}
	}
	return keys
}

func (d *Detector) bucket(id string, sig Signature) {
	for _, key := range d.bandKeys(sig) {
		ids := d.buckets[key]
		if ids == nil {
			ids = make(map[string]struct{})
			d.buckets[key] = ids
		}
		ids[id] = struct{}{}
	}
}

func (d *Detector) unbucket(id string, sig Signature) {
	for _, key := range d.bandKeys(sig) {
		ids := d.buckets[key]
		delete(ids, id)
		if len(ids) == 0 {
			delete(d.buckets, key)
		}
	}
}

// AddDocuments indexes a batch in slice order and returns the number
// of documents processed.
func (d *Detector) AddDocuments(docs []core.Document) int {
	for _, doc := range docs {
		d.AddDocument(doc.Id, doc.Text)
	}
	d.logger.Info("indexed documents for deduplication",
		"added", len(docs), "total", len(d.docIds))
	return len(docs)
}

// SignatureFor returns the stored signature for id.
func (d *Detector) SignatureFor(id string) (Signature, bool) {
	sig, ok := d.signatures[id]
	return sig, ok
}

// FindDuplicates compares indexed documents pairwise and returns the
// pairs at or above the threshold. A nil ids scans the whole corpus;
// otherwise only pairs involving at least one of the given ids are
// reported, and unknown ids are ignored. A non-positive threshold
// uses the detector's configured one. Pairs come back ordered by
// similarity descending, then by ids.
func (d *Detector) FindDuplicates(ids []string, threshold float64) []core.DuplicatePair {
	if threshold <= 0 {
		threshold = d.threshold
	}

	var probes map[string]bool
	if ids != nil {
		probes = make(map[string]bool, len(ids))
		for _, id := range ids {
			probes[id] = true
		}
	}

	var pairs []core.DuplicatePair
	for i, id1 := range d.docIds {
		for _, id2 := range d.docIds[i+1:] {
			if probes != nil && !probes[id1] && !probes[id2] {
				continue
			}
			sim := EstimateJaccard(d.signatures[id1], d.signatures[id2])
			if sim >= threshold {
				a, b := id1, id2
				if a > b {
					a, b = b, a
				}
				pairs = append(pairs, core.DuplicatePair{Id1: a, Id2: b, Similarity: sim})
			}
		}
	}

	sortPairs(pairs)
	d.logger.Info("exhaustive duplicate scan finished",
		"documents", len(d.docIds), "pairs", len(pairs), "threshold", threshold)
	return pairs
}

// FindDuplicatesLSH probes the band buckets for documents colliding
// with the given ids and verifies each candidate pair against the
// full signature. A nil ids probes the whole corpus; otherwise
// candidate partners still come from everything indexed, so a small
// batch can be checked against a large archive without rescanning it.
// Unknown ids are ignored. Same output contract as FindDuplicates for
// corpora whose duplicates collide in at least one band.
func (d *Detector) FindDuplicatesLSH(ids []string) []core.DuplicatePair {
	probes := ids
	if probes == nil {
		probes = d.docIds
	}

	type candidate struct {
		id1, id2 string
	}
	candidates := make(map[candidate]struct{})
	for _, id := range probes {
		sig, ok := d.signatures[id]
		if !ok {
			continue
		}
		for _, key := range d.bandKeys(sig) {
			for other := range d.buckets[key] {
				if other == id {
					continue
				}
				a, b := id, other
				if a > b {
					a, b = b, a
				}
				candidates[candidate{id1: a, id2: b}] = struct{}{}
			}
		}
	}

	var pairs []core.DuplicatePair
	for cand := range candidates {
		sim := EstimateJaccard(d.signatures[cand.id1], d.signatures[cand.id2])
		if sim >= d.threshold {
			pairs = append(pairs, core.DuplicatePair{Id1: cand.id1, Id2: cand.id2, Similarity: sim})
		}
	}

	sortPairs(pairs)
	d.logger.Info("lsh duplicate scan finished",
		"documents", len(d.docIds), "probes", len(probes),
		"candidates", len(candidates), "pairs", len(pairs))
	return pairs
}

// Stats returns detector counters for monitoring.
func (d *Detector) Stats() Stats {
	return Stats{
		DocumentsN: len(d.docIds),
		NumHashes:  d.numHashes,
		Threshold:  d.threshold,
		Bands:      d.bands,
	}
}

// Clear drops every indexed document but keeps the configuration.
func (d *Detector) Clear() {
	d.docIds = nil
	d.signatures = make(map[string]Signature)
	d.buckets = make(map[bandKey]map[string]struct{})
}

// bandHash collapses one band of a signature into a bucket key.
func bandHash(slots []uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, slot := range slots {
		binary.LittleEndian.PutUint64(buf[:], slot)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func sortPairs(pairs []core.DuplicatePair) {
	slices.SortFunc(pairs, func(a, b core.DuplicatePair) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		if c := strings.Compare(a.Id1, b.Id1); c != 0 {
			return c
		}
		return strings.Compare(a.Id2, b.Id2)
	})
}
