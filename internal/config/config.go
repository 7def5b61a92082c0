// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ProviderURL is the upstream standings API endpoint.
	ProviderURL string `koanf:"provider_url"`

	// ProviderKey authenticates against the standings API.
	ProviderKey string `koanf:"provider_key"`

	// ProviderHost is sent alongside the key, as the API gateway requires.
	ProviderHost string `koanf:"provider_host"`

	// ProviderTimeout bounds a single upstream fetch.
	ProviderTimeout time.Duration `koanf:"provider_timeout"`

	// FixturesURL is the published fixtures calendar (ICS) feed.
	FixturesURL string `koanf:"fixtures_url"`

	// FixturesCacheTTL bounds how long a fetched fixtures feed is reused.
	FixturesCacheTTL time.Duration `koanf:"fixtures_cache_ttl"`

	// IdleInterval is the table refresh cadence outside match windows.
	IdleInterval time.Duration `koanf:"idle_interval"`

	// LiveInterval is the table refresh cadence during match windows.
	LiveInterval time.Duration `koanf:"live_interval"`

	// SeasonLength is the number of games each team plays in a full season.
	SeasonLength int `koanf:"season_length"`

	// DBPath locates the SQLite file for snapshots and preferences.
	DBPath string `koanf:"db_path"`

	// SnapshotRetention caps the number of snapshots kept per context.
	SnapshotRetention int `koanf:"snapshot_retention"`

	// QueueSize bounds the in-memory notification queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of delivery workers.
	WorkerCount int `koanf:"worker_count"`

	// PushGatewayURL is the push delivery endpoint. Empty means log-only delivery.
	PushGatewayURL string `koanf:"push_gateway_url"`

	// HourlyNotificationLimit and DailyNotificationLimit cap per-user sends.
	HourlyNotificationLimit int `koanf:"hourly_notification_limit"`
	DailyNotificationLimit  int `koanf:"daily_notification_limit"`

	// NotificationMinGap is the minimum spacing between sends to one user.
	NotificationMinGap time.Duration `koanf:"notification_min_gap"`

	// DedupeWindow suppresses identical notification content within this window.
	DedupeWindow time.Duration `koanf:"dedupe_window"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		ProviderURL:             "https://football-web-pages1.p.rapidapi.com/league-table.json?comp=1",
		ProviderHost:            "football-web-pages1.p.rapidapi.com",
		ProviderTimeout:         10 * time.Second,
		FixturesURL:             "https://ics.fixtur.es/v2/premier-league.ics",
		FixturesCacheTTL:        29 * time.Hour,
		IdleInterval:            30 * time.Minute,
		LiveInterval:            2 * time.Minute,
		SeasonLength:            38,
		DBPath:                  "eplf.db",
		SnapshotRetention:       500,
		QueueSize:               10_000,
		WorkerCount:             4,
		HourlyNotificationLimit: 5,
		DailyNotificationLimit:  20,
		NotificationMinGap:      5 * time.Minute,
		DedupeWindow:            time.Hour,
	}
}
