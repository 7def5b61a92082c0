// Package repository defines the forecast storage interfaces and errors.
package repository

import (
	"context"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
)

// TableStore holds the latest computed forecast table.
type TableStore interface {
	// Swap atomically replaces the cached table.
	Swap(ctx context.Context, table model.Table) error

	// Current returns the cached table. The second return is false until the
	// first successful refresh.
	Current(ctx context.Context) (model.Table, bool)

	// Age returns how long ago the cached table was last refreshed.
	// Returns a negative duration when no table has been stored yet.
	Age(ctx context.Context) time.Duration
}

// HistoryStore persists forecast snapshots and user notification preferences.
type HistoryStore interface {
	// SaveSnapshot appends a snapshot and trims history past the retention cap.
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error

	// LatestSnapshot returns the most recent snapshot.
	// Returns ErrNotFound when no snapshot exists yet.
	LatestSnapshot(ctx context.Context) (model.Snapshot, error)

	// Snapshots returns up to limit snapshots, newest first.
	Snapshots(ctx context.Context, limit int) ([]model.Snapshot, error)

	// PutPreferences creates or replaces a user's notification preferences.
	PutPreferences(ctx context.Context, prefs model.Preferences) error

	// GetPreferences returns a user's preferences.
	// Returns ErrNotFound for unknown users.
	GetPreferences(ctx context.Context, userID string) (model.Preferences, error)

	// ListPreferences returns all stored preferences, for notification fan-out.
	ListPreferences(ctx context.Context) ([]model.Preferences, error)

	// DeletePreferences removes a user's preferences. Unknown users are a no-op.
	DeletePreferences(ctx context.Context, userID string) error

	// Close releases the underlying database handle.
	Close() error
}
