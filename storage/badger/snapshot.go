package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/storage"
)

// SnapshotRepository implements storage.SnapshotRepository for BadgerDB.
type SnapshotRepository struct {
	backend *Backend
}

var _ storage.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(backend *Backend) (*SnapshotRepository, error) {
	return &SnapshotRepository{backend: backend}, nil
}

// Close implements storage.Repository.
func (r *SnapshotRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SnapshotRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveSnapshot persists a clustering snapshot keyed by creation time.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *core.ClusterSnapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSnapshotKey(snapshot.CreatedAt)
		if err := tx.Set(key, storage.MarshalSnapshot(snapshot)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LatestSnapshot retrieves the most recent clustering snapshot.
func (r *SnapshotRepository) LatestSnapshot(ctx context.Context) (*core.ClusterSnapshot, error) {
	var result *core.ClusterSnapshot
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeSnapshotKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(snapshotPrefix + ":")

		iter.Seek(startKey)
		if !iter.Valid() {
			return storage.ErrNotFound
		}
		key := iter.Item().Key()
		if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
			return storage.ErrNotFound
		}

		return iter.Item().Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalSnapshot(val)
			return err
		})
	}, false)

	return result, err
}

// SaveDuplicatePairs persists duplicate pairs. The pair ids form the
// key, so saving the same pair again overwrites its similarity.
func (r *SnapshotRepository) SaveDuplicatePairs(ctx context.Context, pairs ...core.DuplicatePair) error {
	if len(pairs) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, pair := range pairs {
			key := makeDupPairKey(pair.Id1, pair.Id2)
			if err := tx.Set(key, storage.MarshalDuplicatePair(pair)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDuplicatePairs retrieves all stored duplicate pairs, ordered by
// similarity descending.
func (r *SnapshotRepository) GetDuplicatePairs(ctx context.Context) ([]core.DuplicatePair, error) {
	var results []core.DuplicatePair
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(dupPairPrefix + ":")

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				pair, err := storage.UnmarshalDuplicatePair(val)
				if err != nil {
					return err
				}
				results = append(results, pair)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b core.DuplicatePair) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return 0
		}
	})

	return results, nil
}
