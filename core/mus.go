package core

import (
	"sort"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types persisted by the storage layer.
// Hand-written against the mus-go primitive serializers; field order is
// part of the on-disk format and must not change.

var (
	// IDMUS serializes ID values.
	IDMUS = idMUS{}
	// ArticleMUS serializes Article values.
	ArticleMUS = articleMUS{}
	// DuplicatePairMUS serializes DuplicatePair values.
	DuplicatePairMUS = duplicatePairMUS{}
	// ClusterSnapshotMUS serializes ClusterSnapshot values.
	ClusterSnapshotMUS = clusterSnapshotMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// timeMUS stores timestamps as microseconds since the Unix epoch.
type timeMUS struct{}

func (timeMUS) Marshal(v time.Time, bs []byte) int {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (timeMUS) Size(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}

// vectorMUS serializes []float32 embeddings.
type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var m int
		v[i], m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

// stringsMUS serializes []string.
type stringsMUS struct{}

func (stringsMUS) Marshal(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func (stringsMUS) Unmarshal(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]string, length)
	for i := 0; i < length; i++ {
		var m int
		v[i], m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (stringsMUS) Size(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

// metadataMUS serializes map[string]string with sorted keys so identical
// maps always produce identical bytes.
type metadataMUS struct{}

func (metadataMUS) Marshal(v map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v[k], bs[n:])
	}
	return n
}

func (metadataMUS) Unmarshal(bs []byte) (v map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make(map[string]string, length)
	for i := 0; i < length; i++ {
		var (
			key, val string
			m        int
		)
		key, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		val, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		v[key] = val
	}
	return v, n, nil
}

func (metadataMUS) Size(v map[string]string) (size int) {
	size = varint.Int.Size(len(v))
	for k, val := range v {
		size += ord.String.Size(k)
		size += ord.String.Size(val)
	}
	return size
}

type articleMUS struct{}

func (articleMUS) Marshal(v Article, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += timeMUS{}.Marshal(v.PublishedAt, bs[n:])
	n += timeMUS{}.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS{}.Marshal(v.UpdatedAt, bs[n:])
	n += vectorMUS{}.Marshal(v.Vector, bs[n:])
	n += metadataMUS{}.Marshal(v.Metadata, bs[n:])
	return n
}

func (articleMUS) Unmarshal(bs []byte) (v Article, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.Source, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.URL, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.PublishedAt, m, err = (timeMUS{}).Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.InsertedAt, m, err = (timeMUS{}).Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.UpdatedAt, m, err = (timeMUS{}).Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Vector, m, err = (vectorMUS{}).Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Metadata, m, err = (metadataMUS{}).Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (articleMUS) Size(v Article) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Source)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Text)
	size += ord.String.Size(v.URL)
	size += timeMUS{}.Size(v.PublishedAt)
	size += timeMUS{}.Size(v.InsertedAt)
	size += timeMUS{}.Size(v.UpdatedAt)
	size += vectorMUS{}.Size(v.Vector)
	size += metadataMUS{}.Size(v.Metadata)
	return size
}

type duplicatePairMUS struct{}

func (duplicatePairMUS) Marshal(v DuplicatePair, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id1, bs)
	n += ord.String.Marshal(v.Id2, bs[n:])
	n += raw.Float64.Marshal(v.Similarity, bs[n:])
	return n
}

func (duplicatePairMUS) Unmarshal(bs []byte) (v DuplicatePair, n int, err error) {
	var m int
	if v.Id1, n, err = ord.String.Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.Id2, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Similarity, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (duplicatePairMUS) Size(v DuplicatePair) int {
	return ord.String.Size(v.Id1) + ord.String.Size(v.Id2) + raw.Float64.Size(v.Similarity)
}

type clusterSummaryMUS struct{}

func (clusterSummaryMUS) Marshal(v ClusterSummary, bs []byte) (n int) {
	n = varint.Int.Marshal(v.ClusterId, bs)
	n += stringsMUS{}.Marshal(v.ArticleIds, bs[n:])
	n += vectorMUS{}.Marshal(v.Centroid, bs[n:])
	n += varint.Int.Marshal(v.Size, bs[n:])
	n += raw.Float64.Marshal(v.CoherenceScore, bs[n:])
	return n
}

func (clusterSummaryMUS) Unmarshal(bs []byte) (v ClusterSummary, n int, err error) {
	var m int
	if v.ClusterId, n, err = varint.Int.Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.ArticleIds, m, err = (stringsMUS{}).Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Centroid, m, err = (vectorMUS{}).Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Size, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.CoherenceScore, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (clusterSummaryMUS) Size(v ClusterSummary) (size int) {
	size = varint.Int.Size(v.ClusterId)
	size += stringsMUS{}.Size(v.ArticleIds)
	size += vectorMUS{}.Size(v.Centroid)
	size += varint.Int.Size(v.Size)
	size += raw.Float64.Size(v.CoherenceScore)
	return size
}

type noiseArticleMUS struct{}

func (noiseArticleMUS) Marshal(v NoiseArticle, bs []byte) (n int) {
	n = ord.String.Marshal(v.ArticleId, bs)
	n += raw.Float64.Marshal(v.OutlierScore, bs[n:])
	n += ord.Bool.Marshal(v.IsNoise, bs[n:])
	return n
}

func (noiseArticleMUS) Unmarshal(bs []byte) (v NoiseArticle, n int, err error) {
	var m int
	if v.ArticleId, n, err = ord.String.Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.OutlierScore, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.IsNoise, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (noiseArticleMUS) Size(v NoiseArticle) int {
	return ord.String.Size(v.ArticleId) + raw.Float64.Size(v.OutlierScore) + ord.Bool.Size(v.IsNoise)
}

type clusterSnapshotMUS struct{}

func (clusterSnapshotMUS) Marshal(v ClusterSnapshot, bs []byte) (n int) {
	n = timeMUS{}.Marshal(v.CreatedAt, bs)
	n += varint.Int.Marshal(v.NClusters, bs[n:])
	n += varint.Int.Marshal(v.NNoise, bs[n:])
	n += varint.Int.Marshal(len(v.Clusters), bs[n:])
	for _, c := range v.Clusters {
		n += clusterSummaryMUS{}.Marshal(c, bs[n:])
	}
	n += varint.Int.Marshal(len(v.Noise), bs[n:])
	for _, na := range v.Noise {
		n += noiseArticleMUS{}.Marshal(na, bs[n:])
	}
	return n
}

func (clusterSnapshotMUS) Unmarshal(bs []byte) (v ClusterSnapshot, n int, err error) {
	var m int
	if v.CreatedAt, n, err = (timeMUS{}).Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.NClusters, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.NNoise, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	var length int
	if length, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if length > 0 {
		v.Clusters = make([]ClusterSummary, length)
		for i := 0; i < length; i++ {
			if v.Clusters[i], m, err = (clusterSummaryMUS{}).Unmarshal(bs[n:]); err != nil {
				return v, n + m, err
			}
			n += m
		}
	}
	if length, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if length > 0 {
		v.Noise = make([]NoiseArticle, length)
		for i := 0; i < length; i++ {
			if v.Noise[i], m, err = (noiseArticleMUS{}).Unmarshal(bs[n:]); err != nil {
				return v, n + m, err
			}
			n += m
		}
	}
	return v, n, nil
}

func (clusterSnapshotMUS) Size(v ClusterSnapshot) (size int) {
	size = timeMUS{}.Size(v.CreatedAt)
	size += varint.Int.Size(v.NClusters)
	size += varint.Int.Size(v.NNoise)
	size += varint.Int.Size(len(v.Clusters))
	for _, c := range v.Clusters {
		size += clusterSummaryMUS{}.Size(c)
	}
	size += varint.Int.Size(len(v.Noise))
	for _, na := range v.Noise {
		size += noiseArticleMUS{}.Size(na)
	}
	return size
}
