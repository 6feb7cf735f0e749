// Package watch provides the hub broadcasting board notices to watchers.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osa030/welcomewall/internal/app/effects"
	"github.com/osa030/welcomewall/internal/domain/arrival"
)

// Notice types.
const (
	NoticeShown   = "announcement_shown"
	NoticeCleared = "announcement_cleared"
	NoticeBoard   = "board_updated"
	NoticeBurst   = "burst"
	NoticeMuted   = "muted"
)

// Notice is one push message to the presentation layer.
type Notice struct {
	Seq          uint64             `json:"seq"`
	Type         string             `json:"type"`
	Announcement *arrival.Arrival   `json:"announcement,omitempty"`
	Total        int                `json:"total,omitempty"`
	Ticker       []string           `json:"ticker,omitempty"`
	Burst        *effects.BurstPlan `json:"burst,omitempty"`
	Muted        *bool              `json:"muted,omitempty"`
}

// Stream represents a notice stream for a subscriber.
type Stream interface {
	Send(*Notice) error
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id     string
	stream Stream
}

// Hub manages watcher subscriptions and broadcasting.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription

	seqMu sync.Mutex
	seq   uint64
}

// NewHub creates a new watcher hub.
func NewHub() *Hub {
	return &Hub{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
func (h *Hub) Subscribe(stream Stream) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	h.subscriptions[id] = &subscription{id: id, stream: stream}
	return id
}

// Unsubscribe removes a subscription.
func (h *Hub) Unsubscribe(subscriptionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscriptions, subscriptionID)
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions)
}

// EmitBurst implements effects.BurstSink: a particle burst is just another
// notice to the dashboard.
func (h *Hub) EmitBurst(plan effects.BurstPlan) {
	h.Broadcast(&Notice{Type: NoticeBurst, Burst: &plan})
}

// Broadcast sends a notice to all subscribers, stamping it with the next
// sequence number. Each send runs in its own goroutine with a timeout so a
// stuck watcher cannot stall the board.
func (h *Hub) Broadcast(notice *Notice) {
	h.seqMu.Lock()
	h.seq++
	notice.Seq = h.seq
	h.seqMu.Unlock()

	h.mu.RLock()
	subs := make([]*subscription, 0, len(h.subscriptions))
	for _, sub := range h.subscriptions {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.stream.Send(notice)
			}()

			select {
			case <-done:
				// Send errors are ignored: a broken watcher is dropped
				// when its own read loop fails.
			case <-ctx.Done():
			}
		}(sub)
	}
	wg.Wait()
}

// Close removes all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscriptions = make(map[string]*subscription)
}
