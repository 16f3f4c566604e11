package storage

import (
	"testing"
	"time"

	"github.com/poiesic/newsmill/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("article body")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalArticle(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	article := &core.Article{
		Id:          core.IDFromContent("headline body"),
		Source:      "reuters",
		Title:       "Headline",
		Text:        "Body of the story with some detail.",
		URL:         "https://example.com/story",
		PublishedAt: now.Add(-time.Hour),
		InsertedAt:  now,
		UpdatedAt:   now,
		Vector:      []float32{0.25, -0.5, 1.0},
		Metadata:    map[string]string{"lang": "en"},
	}

	data := MarshalArticle(article)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalArticle(data)
	require.NoError(t, err)
	assert.Equal(t, article.Id, decoded.Id)
	assert.Equal(t, article.Source, decoded.Source)
	assert.Equal(t, article.Title, decoded.Title)
	assert.Equal(t, article.Text, decoded.Text)
	assert.Equal(t, article.URL, decoded.URL)
	assert.True(t, article.PublishedAt.Equal(decoded.PublishedAt))
	assert.True(t, article.InsertedAt.Equal(decoded.InsertedAt))
	assert.Equal(t, article.Vector, decoded.Vector)
	assert.Equal(t, article.Metadata, decoded.Metadata)
}

func TestUnmarshalArticle_Truncated(t *testing.T) {
	article := &core.Article{Id: 1, Source: "ap", Title: "Short"}
	data := MarshalArticle(article)

	_, err := UnmarshalArticle(data[:len(data)/2])
	assert.Error(t, err)
}

func TestMarshalUnmarshalSnapshot(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	snapshot := &core.ClusterSnapshot{
		CreatedAt: now,
		NClusters: 1,
		NNoise:    1,
		Clusters: []core.ClusterSummary{
			{
				ClusterId:      0,
				ArticleIds:     []string{"1", "2"},
				Centroid:       []float32{0.1, 0.9},
				Size:           2,
				CoherenceScore: 0.88,
			},
		},
		Noise: []core.NoiseArticle{
			{ArticleId: "3", OutlierScore: 0.95, IsNoise: true},
		},
	}

	data := MarshalSnapshot(snapshot)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.True(t, snapshot.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, snapshot.NClusters, decoded.NClusters)
	assert.Equal(t, snapshot.NNoise, decoded.NNoise)
	assert.Equal(t, snapshot.Clusters, decoded.Clusters)
	assert.Equal(t, snapshot.Noise, decoded.Noise)
}

func TestMarshalUnmarshalDuplicatePair(t *testing.T) {
	pair := core.DuplicatePair{Id1: "10", Id2: "20", Similarity: 0.9}

	decoded, err := UnmarshalDuplicatePair(MarshalDuplicatePair(pair))
	require.NoError(t, err)
	assert.Equal(t, pair, decoded)
}
