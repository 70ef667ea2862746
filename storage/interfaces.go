package storage

import (
	"context"

	"github.com/poiesic/tm2map/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	// It does not close a backend shared with other repositories.
	Close() error
}

// SettingsRepository persists the integration settings document.
type SettingsRepository interface {
	Repository

	// GetSettings retrieves the stored settings document.
	// Returns ErrNotFound if no document has been saved.
	GetSettings(ctx context.Context) (*core.Settings, error)

	// SaveSettings stores the settings document, replacing any previous one.
	SaveSettings(ctx context.Context, settings *core.Settings) error
}

// SnapshotRepository records metadata about loaded snapshots.
type SnapshotRepository interface {
	Repository

	// SaveSnapshotInfo stores info as the latest snapshot and appends it to the history.
	SaveSnapshotInfo(ctx context.Context, info *core.SnapshotInfo) error

	// LoadSnapshotInfo retrieves the latest snapshot info.
	// Returns nil, nil if nothing has been saved.
	LoadSnapshotInfo(ctx context.Context) (*core.SnapshotInfo, error)

	// GetSnapshotHistory retrieves up to limit saved snapshot infos, most recent first.
	GetSnapshotHistory(ctx context.Context, limit int) ([]*core.SnapshotInfo, error)
}
