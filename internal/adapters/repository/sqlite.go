package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	"github.com/TheLoudSteve/epl-forecast/pkg/metrics"
)

const defaultRetention = 500

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id       TEXT PRIMARY KEY,
	season   TEXT NOT NULL,
	taken_at INTEGER NOT NULL,
	context  TEXT NOT NULL DEFAULT '',
	teams    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);

CREATE TABLE IF NOT EXISTS preferences (
	user_id     TEXT PRIMARY KEY,
	team_name   TEXT NOT NULL,
	enabled     INTEGER NOT NULL,
	timing      TEXT NOT NULL,
	sensitivity TEXT NOT NULL,
	push_token  TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
`

// SQLiteStore persists snapshots and preferences in SQLite.
type SQLiteStore struct {
	db        *sql.DB
	retention int
}

// SQLiteOption applies a configuration option to the SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSnapshotRetention caps how many snapshots are kept.
func WithSnapshotRetention(n int) SQLiteOption {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.retention = n
		}
	}
}

// OpenSQLite opens (creating if needed) the SQLite history store.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: storage path is required", ErrStorage)
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrStorage, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrStorage, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: schema: %w", ErrStorage, err)
	}

	s := &SQLiteStore{db: db, retention: defaultRetention}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSnapshot appends a snapshot and trims history past the retention cap.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	teams, err := json.Marshal(snap.Teams)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", ErrStorage, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, season, taken_at, context, teams) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.Season, snap.TakenAt.UTC().UnixMilli(), snap.Context, string(teams))
	if err != nil {
		return fmt.Errorf("%w: insert snapshot: %w", ErrStorage, err)
	}

	// Retention trim keeps the newest rows.
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY taken_at DESC LIMIT ?)`, s.retention)
	if err != nil {
		return fmt.Errorf("%w: trim snapshots: %w", ErrStorage, err)
	}

	metrics.RecordSnapshotWrite()
	return nil
}

// LatestSnapshot returns the most recent snapshot.
func (s *SQLiteStore) LatestSnapshot(ctx context.Context) (model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, season, taken_at, context, teams FROM snapshots ORDER BY taken_at DESC LIMIT 1`)
	snap, err := scanSnapshot(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, ErrNotFound
	}
	return snap, err
}

// Snapshots returns up to limit snapshots, newest first.
func (s *SQLiteStore) Snapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = s.retention
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, season, taken_at, context, teams FROM snapshots ORDER BY taken_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query snapshots: %w", ErrStorage, err)
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate snapshots: %w", ErrStorage, err)
	}
	return out, nil
}

func scanSnapshot(scan func(...any) error) (model.Snapshot, error) {
	var (
		snap    model.Snapshot
		takenAt int64
		teams   string
	)
	if err := scan(&snap.ID, &snap.Season, &takenAt, &snap.Context, &teams); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Snapshot{}, err
		}
		return model.Snapshot{}, fmt.Errorf("%w: scan snapshot: %w", ErrStorage, err)
	}
	snap.TakenAt = time.UnixMilli(takenAt).UTC()
	if err := json.Unmarshal([]byte(teams), &snap.Teams); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: decode snapshot: %w", ErrStorage, err)
	}
	return snap, nil
}

// PutPreferences creates or replaces a user's notification preferences.
func (s *SQLiteStore) PutPreferences(ctx context.Context, prefs model.Preferences) error {
	now := time.Now().UTC()
	if prefs.CreatedAt.IsZero() {
		prefs.CreatedAt = now
	}
	prefs.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences
			(user_id, team_name, enabled, timing, sensitivity, push_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			team_name = excluded.team_name,
			enabled = excluded.enabled,
			timing = excluded.timing,
			sensitivity = excluded.sensitivity,
			push_token = excluded.push_token,
			updated_at = excluded.updated_at`,
		prefs.UserID, prefs.TeamName, boolToInt(prefs.Enabled),
		string(prefs.Timing), string(prefs.Sensitivity), prefs.PushToken,
		prefs.CreatedAt.UnixMilli(), prefs.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: upsert preferences: %w", ErrStorage, err)
	}
	return nil
}

// GetPreferences returns a user's preferences.
func (s *SQLiteStore) GetPreferences(ctx context.Context, userID string) (model.Preferences, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, team_name, enabled, timing, sensitivity, push_token, created_at, updated_at
		 FROM preferences WHERE user_id = ?`, userID)
	prefs, err := scanPreferences(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preferences{}, ErrNotFound
	}
	return prefs, err
}

// ListPreferences returns all stored preferences.
func (s *SQLiteStore) ListPreferences(ctx context.Context) ([]model.Preferences, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, team_name, enabled, timing, sensitivity, push_token, created_at, updated_at
		 FROM preferences ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query preferences: %w", ErrStorage, err)
	}
	defer rows.Close()

	var out []model.Preferences
	for rows.Next() {
		prefs, err := scanPreferences(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, prefs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate preferences: %w", ErrStorage, err)
	}
	return out, nil
}

// DeletePreferences removes a user's preferences.
func (s *SQLiteStore) DeletePreferences(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("%w: delete preferences: %w", ErrStorage, err)
	}
	return nil
}

func scanPreferences(scan func(...any) error) (model.Preferences, error) {
	var (
		prefs              model.Preferences
		enabled            int
		timing             string
		sensitivity        string
		createdAt, updated int64
	)
	err := scan(&prefs.UserID, &prefs.TeamName, &enabled, &timing, &sensitivity,
		&prefs.PushToken, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Preferences{}, err
		}
		return model.Preferences{}, fmt.Errorf("%w: scan preferences: %w", ErrStorage, err)
	}
	prefs.Enabled = enabled != 0
	prefs.Timing = model.Timing(timing)
	prefs.Sensitivity = model.Sensitivity(sensitivity)
	prefs.CreatedAt = time.UnixMilli(createdAt).UTC()
	prefs.UpdatedAt = time.UnixMilli(updated).UTC()
	return prefs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
