// Package state provides board state management.
package state

import (
	"sync"
	"time"
)

// Manager holds the board's poll-derived state with thread-safe access.
// This is presentation input only; announcement state lives in the
// announce controller.
type Manager struct {
	mu sync.RWMutex

	total      int
	ticker     []string
	lastPollAt time.Time

	// Consecutive failed polls since the last success.
	fetchFailures int
}

// New creates a new state manager.
func New() *Manager {
	return &Manager{}
}

// SetBoard records a successful poll's aggregate view.
func (m *Manager) SetBoard(total int, ticker []string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
	m.ticker = ticker
	m.lastPollAt = at
	m.fetchFailures = 0
}

// RecordFetchFailure increments the consecutive failure count.
func (m *Manager) RecordFetchFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchFailures++
}

// GetTotal returns the aggregate joined-user count.
func (m *Manager) GetTotal() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// GetTicker returns a copy of the ticker list.
func (m *Manager) GetTicker() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.ticker))
	copy(out, m.ticker)
	return out
}

// GetLastPollAt returns the time of the last successful poll.
func (m *Manager) GetLastPollAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastPollAt
}

// GetFetchFailures returns the consecutive failed poll count.
func (m *Manager) GetFetchFailures() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fetchFailures
}
