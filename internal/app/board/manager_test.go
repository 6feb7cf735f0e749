package board

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/welcomewall/internal/domain/arrival"
	"github.com/osa030/welcomewall/internal/infra/config"
)

// scriptedFetcher returns one queued snapshot (or error) per Fetch call.
type scriptedFetcher struct {
	results []fetchResult
	calls   int
}

type fetchResult struct {
	snap arrival.Snapshot
	err  error
}

func (f *scriptedFetcher) Fetch(ctx context.Context) (arrival.Snapshot, error) {
	if f.calls >= len(f.results) {
		return arrival.Snapshot{}, errors.New("script exhausted")
	}
	r := f.results[f.calls]
	f.calls++
	return r.snap, r.err
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{
		Feed: config.FeedConfig{
			URL:            "http://localhost:9000/api/arrivals",
			PollIntervalMs: 5000,
		},
		Announce: config.AnnounceConfig{
			DisplayDurationMs: 7000,
			GapMs:             1500,
			SpeechDelayMs:     600,
		},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestManager(t *testing.T, fetcher Fetcher) *Manager {
	m, err := NewManager(testConfig(t), fetcher)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestPollOnce_ColdStartScenario(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{
		{snap: arrival.Snapshot{Total: 10, RecentNames: []string{"A", "B"}}},
		{snap: arrival.Snapshot{
			Total:       11,
			Latest:      &arrival.Arrival{ID: "u1", DisplayName: "Sam"},
			RecentNames: []string{"Sam", "A", "B"},
		}},
		{snap: arrival.Snapshot{
			Total:       12,
			Latest:      &arrival.Arrival{ID: "u2", DisplayName: "Lee"},
			RecentNames: []string{"Lee", "Sam", "A"},
		}},
	}}
	m := newTestManager(t, fetcher)
	ctx := context.Background()

	// Snapshot 1: no latest_user. Board state lands; the fallback loop
	// starts showing ticker names, but nothing is announced as new.
	m.pollOnce(ctx)
	s := m.Status()
	assert.Equal(t, 10, s.Total)
	assert.Equal(t, []string{"A", "B"}, s.Ticker)
	require.NotNil(t, s.Current)
	assert.True(t, s.Current.IsLoop())

	// Snapshot 2: the first latest_user is recorded without announcement.
	m.pollOnce(ctx)
	s = m.Status()
	assert.Equal(t, 11, s.Total)
	require.NotNil(t, s.Current)
	assert.True(t, s.Current.IsLoop(), "cold start must not announce u1")

	// Snapshot 3: u2 is a real new arrival, queued behind the loop card
	// currently showing.
	m.pollOnce(ctx)
	assert.Equal(t, 12, m.Status().Total)
}

func TestPollOnce_FetchErrorIsSkipped(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{
		{snap: arrival.Snapshot{Total: 7, RecentNames: []string{"A"}}},
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{snap: arrival.Snapshot{Total: 8, RecentNames: []string{"B", "A"}}},
	}}
	m := newTestManager(t, fetcher)
	ctx := context.Background()

	m.pollOnce(ctx)
	assert.Equal(t, 7, m.Status().Total)

	m.pollOnce(ctx)
	m.pollOnce(ctx)
	s := m.Status()
	assert.Equal(t, 7, s.Total, "failed polls leave board state untouched")
	assert.Equal(t, 2, s.FetchFailures)

	m.pollOnce(ctx)
	s = m.Status()
	assert.Equal(t, 8, s.Total)
	assert.Equal(t, 0, s.FetchFailures, "success resets the failure count")
}

func TestSetMuted(t *testing.T) {
	fetcher := &scriptedFetcher{}
	m := newTestManager(t, fetcher)

	assert.False(t, m.Status().Muted)
	m.SetMuted(true)
	assert.True(t, m.Status().Muted)
	m.SetMuted(false)
	assert.False(t, m.Status().Muted)
}

func TestNewManager_RequiresFetcher(t *testing.T) {
	_, err := NewManager(testConfig(t), nil)
	assert.Error(t, err)
}
