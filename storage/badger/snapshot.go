// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tm2map/core"
	"github.com/poiesic/tm2map/storage"
)

// SnapshotRepository implements storage.SnapshotRepository for BadgerDB.
type SnapshotRepository struct {
	backend *Backend
}

var _ storage.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(backend *Backend) (*SnapshotRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &SnapshotRepository{
		backend: backend,
	}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *SnapshotRepository) Close() error {
	return nil
}

// SaveSnapshotInfo persists info as the latest snapshot and records it in the history.
func (r *SnapshotRepository) SaveSnapshotInfo(ctx context.Context, info *core.SnapshotInfo) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if info.LoadedAt.IsZero() {
			info.LoadedAt = time.Now().UTC()
		}
		value := storage.MarshalSnapshotInfo(info)
		if err := tx.Set([]byte(snapshotLatestKey), value); err != nil {
			return err
		}
		if err := tx.Set(makeSnapshotHistoryKey(info.LoadedAt, info.Fingerprint), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadSnapshotInfo retrieves the latest snapshot info.
// Returns nil, nil if no snapshot has been saved.
func (r *SnapshotRepository) LoadSnapshotInfo(ctx context.Context) (*core.SnapshotInfo, error) {
	var info *core.SnapshotInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(snapshotLatestKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			info, unmarshalErr = storage.UnmarshalSnapshotInfo(val)
			return unmarshalErr
		})
	}, false)

	return info, err
}

// GetSnapshotHistory retrieves up to limit snapshot infos, most recent first.
func (r *SnapshotRepository) GetSnapshotHistory(ctx context.Context, limit int) ([]*core.SnapshotInfo, error) {
	var results []*core.SnapshotInfo
	if limit <= 0 {
		return results, nil
	}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent snapshots first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key with the history prefix
		startKey := makePartialSnapshotHistoryKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(snapshotHistoryPrefix + ":")

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var info *core.SnapshotInfo
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				info, err = storage.UnmarshalSnapshotInfo(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, info)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}
