package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tm2map/core"
	"github.com/poiesic/tm2map/storage"
)

// SettingsRepository implements storage.SettingsRepository for BadgerDB.
type SettingsRepository struct {
	backend *Backend
}

var _ storage.SettingsRepository = (*SettingsRepository)(nil)

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(backend *Backend) (*SettingsRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &SettingsRepository{
		backend: backend,
	}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *SettingsRepository) Close() error {
	return nil
}

// GetSettings retrieves the stored settings document.
func (r *SettingsRepository) GetSettings(ctx context.Context) (*core.Settings, error) {
	var settings *core.Settings
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(settingsKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			settings, unmarshalErr = storage.UnmarshalSettings(val)
			if unmarshalErr != nil {
				return errors.Join(storage.ErrSerializationFailed, unmarshalErr)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings stores the settings document as given.
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings *core.Settings) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(settingsKey), storage.MarshalSettings(settings)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
