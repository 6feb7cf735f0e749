// Package board provides the board manager wiring the poll loop to the
// announcement cycle.
package board

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/welcomewall/internal/app/announce"
	"github.com/osa030/welcomewall/internal/app/board/state"
	"github.com/osa030/welcomewall/internal/app/dedup"
	"github.com/osa030/welcomewall/internal/app/effects"
	"github.com/osa030/welcomewall/internal/app/watch"
	"github.com/osa030/welcomewall/internal/domain/arrival"
	"github.com/osa030/welcomewall/internal/infra/config"
)

// Fetcher is the interface for the snapshot poll.
type Fetcher interface {
	Fetch(ctx context.Context) (arrival.Snapshot, error)
}

// Status is the read-only view exposed to the presentation layer.
type Status struct {
	BoardID       string           `json:"board_id"`
	Total         int              `json:"total"`
	Ticker        []string         `json:"ticker"`
	Current       *arrival.Arrival `json:"current,omitempty"`
	CycleState    string           `json:"cycle_state"`
	Muted         bool             `json:"muted"`
	LastPollAt    time.Time        `json:"last_poll_at"`
	FetchFailures int              `json:"fetch_failures"`
}

// Manager owns the poll loop and the announcement components.
type Manager struct {
	config  *config.Config
	boardID string

	fetcher    Fetcher
	dedup      *dedup.Deduplicator
	controller *announce.Controller
	stateMgr   *state.Manager
	hub        *watch.Hub

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewManager creates a new board manager.
func NewManager(cfg *config.Config, fetcher Fetcher) (*Manager, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := watch.NewHub()

	fx, err := effects.NewSetFromConfig(cfg, hub)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "failed to create effect dispatchers")
	}

	m := &Manager{
		config:  cfg,
		boardID: uuid.New().String(),
		fetcher: fetcher,
		dedup:   dedup.New(),
		controller: announce.NewController(announce.Config{
			DisplayDuration: cfg.DisplayDuration(),
			Gap:             cfg.Gap(),
			SpeechDelay:     cfg.SpeechDelay(),
			StartMuted:      cfg.Announce.StartMuted,
		}, fx),
		stateMgr: state.New(),
		hub:      hub,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	return m, nil
}

// Start runs the poll loop and the event forwarder until Close.
// The first poll happens immediately, with no initial delay.
func (m *Manager) Start() {
	go m.forwardEvents()
	go m.pollLoop()
	zlog.Info().Msgf("board %s started: poll_interval=%v", m.boardID, m.config.PollInterval())
}

// Done is closed when the board has fully stopped.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Hub returns the watcher hub for the push transport.
func (m *Manager) Hub() *watch.Hub {
	return m.hub
}

// SetMuted flips the mute flag and notifies watchers.
func (m *Manager) SetMuted(muted bool) {
	m.controller.SetMuted(muted)
	m.hub.Broadcast(&watch.Notice{Type: watch.NoticeMuted, Muted: &muted})
}

// Status returns the board's current read-only view.
func (m *Manager) Status() Status {
	s := Status{
		BoardID:       m.boardID,
		Total:         m.stateMgr.GetTotal(),
		Ticker:        m.stateMgr.GetTicker(),
		CycleState:    m.controller.StateOf().String(),
		Muted:         m.controller.Muted(),
		LastPollAt:    m.stateMgr.GetLastPollAt(),
		FetchFailures: m.stateMgr.GetFetchFailures(),
	}
	if cur, ok := m.controller.Current(); ok {
		s.Current = cur
	}
	return s
}

// Close tears down the board: poll loop, timers, effects, watchers.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		m.controller.Close()
		m.hub.Close()
	})
}

// pollLoop fetches on a fixed interval. Overlap with a slow previous poll
// is not prevented; the deduplicator treats snapshots idempotently.
func (m *Manager) pollLoop() {
	m.pollOnce(m.ctx)

	ticker := time.NewTicker(m.config.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			go m.pollOnce(m.ctx)
		}
	}
}

// pollOnce runs a single fetch-dedup-enqueue cycle.
// A fetch error is logged and the cycle skipped; the next scheduled poll
// proceeds unaffected.
func (m *Manager) pollOnce(ctx context.Context) {
	snap, err := m.fetcher.Fetch(ctx)
	if err != nil {
		m.stateMgr.RecordFetchFailure()
		zlog.Warn().Msgf("board: poll failed (%d consecutive): %v", m.stateMgr.GetFetchFailures(), err)
		return
	}

	m.stateMgr.SetBoard(snap.Total, snap.RecentNames, time.Now())

	// Enqueue before the snapshot lands so a real arrival wins the very
	// next dequeue over the fallback loop.
	if a, ok := m.dedup.Observe(snap); ok {
		zlog.Info().Msgf("board: new arrival id=%s name=%s", a.ID, a.DisplayName)
		m.controller.Enqueue(*a)
	}
	m.controller.ObserveSnapshot(snap)

	m.hub.Broadcast(&watch.Notice{
		Type:   watch.NoticeBoard,
		Total:  snap.Total,
		Ticker: snap.RecentNames,
	})
}

// forwardEvents relays controller events to the watchers.
func (m *Manager) forwardEvents() {
	defer close(m.done)

	for ev := range m.controller.Events() {
		switch ev.Type {
		case announce.EventShown:
			m.hub.Broadcast(&watch.Notice{Type: watch.NoticeShown, Announcement: ev.Arrival})
		case announce.EventCleared:
			m.hub.Broadcast(&watch.Notice{Type: watch.NoticeCleared, Announcement: ev.Arrival})
		case announce.EventWentIdle:
			// Nothing to show; watchers keep the ticker scrolling.
		}
	}
}
