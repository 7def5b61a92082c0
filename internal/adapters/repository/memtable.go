package repository

import (
	"context"
	"sync"
	"time"

	"github.com/TheLoudSteve/epl-forecast/internal/domain/model"
	"github.com/TheLoudSteve/epl-forecast/pkg/metrics"
)

// MemTable is the in-memory TableStore. The forecast table is small (twenty
// rows) and rebuilt whole on every refresh, so a copy-on-swap behind a RWMutex
// keeps reads contention-free during refreshes.
type MemTable struct {
	mu        sync.RWMutex
	table     model.Table
	populated bool
	now       func() time.Time
}

// MemTableOption applies a configuration option to the MemTable.
type MemTableOption func(*MemTable)

// WithTableClock overrides the time source. Mostly for tests.
func WithTableClock(now func() time.Time) MemTableOption {
	return func(m *MemTable) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemTable creates an empty table store.
func NewMemTable(opts ...MemTableOption) *MemTable {
	m := &MemTable{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Swap atomically replaces the cached table.
func (m *MemTable) Swap(_ context.Context, table model.Table) error {
	// Deep-copy the rows so callers cannot mutate the cached table.
	teams := make([]model.Team, len(table.Teams))
	copy(teams, table.Teams)
	table.Teams = teams

	m.mu.Lock()
	m.table = table
	m.populated = true
	m.mu.Unlock()

	metrics.UpdateTableTeams(len(teams))
	metrics.UpdateTableLastUpdated(table.LastUpdated.Unix())
	return nil
}

// Current returns the cached table.
func (m *MemTable) Current(_ context.Context) (model.Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.populated {
		return model.Table{}, false
	}
	teams := make([]model.Team, len(m.table.Teams))
	copy(teams, m.table.Teams)
	out := m.table
	out.Teams = teams
	return out, true
}

// Age returns the time since the last refresh, negative when empty.
func (m *MemTable) Age(_ context.Context) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.populated {
		return -1
	}
	return m.now().Sub(m.table.LastUpdated)
}
