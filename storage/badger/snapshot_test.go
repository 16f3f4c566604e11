package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/storage"
)

func TestSnapshotSaveAndLatest(t *testing.T) {
	articleRepo, snapshotRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { snapshotRepo.Close(); articleRepo.Close(); backend.Close() }()

	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	older := &core.ClusterSnapshot{
		CreatedAt: now.Add(-time.Hour),
		NClusters: 1,
		Clusters: []core.ClusterSummary{
			{ClusterId: 0, ArticleIds: []string{"1"}, Size: 1, CoherenceScore: 1},
		},
	}
	newer := &core.ClusterSnapshot{
		CreatedAt: now,
		NClusters: 2,
		NNoise:    1,
		Clusters: []core.ClusterSummary{
			{ClusterId: 0, ArticleIds: []string{"1", "2"}, Size: 2, CoherenceScore: 0.9},
			{ClusterId: 1, ArticleIds: []string{"3", "4"}, Size: 2, CoherenceScore: 0.8},
		},
		Noise: []core.NoiseArticle{{ArticleId: "5", OutlierScore: 0.92, IsNoise: true}},
	}

	if err := snapshotRepo.SaveSnapshot(ctx, older); err != nil {
		t.Fatalf("Failed to save older snapshot: %v", err)
	}
	if err := snapshotRepo.SaveSnapshot(ctx, newer); err != nil {
		t.Fatalf("Failed to save newer snapshot: %v", err)
	}

	latest, err := snapshotRepo.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("Failed to get latest snapshot: %v", err)
	}
	if latest.NClusters != 2 {
		t.Fatalf("Expected the newer snapshot, got NClusters=%d", latest.NClusters)
	}
	if !latest.CreatedAt.Equal(now) {
		t.Fatalf("Expected CreatedAt %v, got %v", now, latest.CreatedAt)
	}
	if len(latest.Noise) != 1 || latest.Noise[0].ArticleId != "5" {
		t.Fatalf("Noise list not preserved: %+v", latest.Noise)
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	articleRepo, snapshotRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { snapshotRepo.Close(); articleRepo.Close(); backend.Close() }()

	if _, err := snapshotRepo.LatestSnapshot(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotSetsCreatedAt(t *testing.T) {
	articleRepo, snapshotRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { snapshotRepo.Close(); articleRepo.Close(); backend.Close() }()

	snapshot := &core.ClusterSnapshot{NClusters: 0}
	if err := snapshotRepo.SaveSnapshot(context.Background(), snapshot); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}
	if snapshot.CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be populated")
	}
}

func TestDuplicatePairs(t *testing.T) {
	articleRepo, snapshotRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { snapshotRepo.Close(); articleRepo.Close(); backend.Close() }()

	ctx := context.Background()

	pairs := []core.DuplicatePair{
		{Id1: "1", Id2: "2", Similarity: 0.90},
		{Id1: "3", Id2: "4", Similarity: 0.99},
	}
	if err := snapshotRepo.SaveDuplicatePairs(ctx, pairs...); err != nil {
		t.Fatalf("Failed to save pairs: %v", err)
	}

	// Re-saving the same pair overwrites its similarity.
	if err := snapshotRepo.SaveDuplicatePairs(ctx, core.DuplicatePair{Id1: "1", Id2: "2", Similarity: 0.95}); err != nil {
		t.Fatalf("Failed to re-save pair: %v", err)
	}

	stored, err := snapshotRepo.GetDuplicatePairs(ctx)
	if err != nil {
		t.Fatalf("Failed to get pairs: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(stored))
	}
	if stored[0].Similarity != 0.99 {
		t.Fatalf("Expected similarity-descending order, got %+v", stored)
	}
	if stored[1].Similarity != 0.95 {
		t.Fatalf("Expected overwritten similarity 0.95, got %f", stored[1].Similarity)
	}
}

func TestSaveDuplicatePairsEmpty(t *testing.T) {
	articleRepo, snapshotRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { snapshotRepo.Close(); articleRepo.Close(); backend.Close() }()

	if err := snapshotRepo.SaveDuplicatePairs(context.Background()); err != nil {
		t.Fatalf("Expected no error for empty save, got %v", err)
	}
}
