// Package queue provides the announcement queue with a fallback loop.
package queue

import (
	"fmt"
	"time"

	"github.com/osa030/welcomewall/internal/domain/arrival"
)

// Queue holds real arrivals awaiting announcement, FIFO and unbounded,
// and cycles deterministically through a snapshot's recent names when no
// real arrival is pending. Real arrivals strictly preempt the loop.
//
// Queue is not safe for concurrent use; the announcement controller
// serializes access behind its own lock.
type Queue struct {
	pending []arrival.Arrival
	cursor  int

	now func() time.Time // injected for deterministic loop ids in tests
}

// New creates a new announcement queue.
func New() *Queue {
	return &Queue{
		pending: make([]arrival.Arrival, 0),
		now:     time.Now,
	}
}

// Enqueue appends a real arrival to the tail.
func (q *Queue) Enqueue(a arrival.Arrival) {
	q.pending = append(q.pending, a)
}

// Len returns the number of pending real arrivals.
func (q *Queue) Len() int {
	return len(q.pending)
}

// DequeueOrFallback returns the next arrival to announce.
// Priority order: oldest pending real arrival; else a loop arrival
// synthesized from the snapshot's recent names; else nothing.
func (q *Queue) DequeueOrFallback(snap arrival.Snapshot) (arrival.Arrival, bool) {
	if len(q.pending) > 0 {
		head := q.pending[0]
		q.pending = q.pending[1:]
		return head, true
	}

	if !snap.HasNames() {
		return arrival.Arrival{}, false
	}

	// The cursor persists across polls while the underlying list is
	// replaced by fresher snapshots of possibly different length, so it
	// must be re-clamped into range on each use.
	if q.cursor >= len(snap.RecentNames) {
		q.cursor = 0
	}

	now := q.now()
	loop := arrival.Arrival{
		// Unique per synthesis: a loop arrival must never be mistaken
		// for a real one or suppressed by dedup bookkeeping.
		ID:          fmt.Sprintf("%s%d-%d", arrival.LoopIDPrefix, q.cursor, now.UnixMilli()),
		DisplayName: snap.RecentNames[q.cursor],
		JoinedAt:    now,
	}
	q.cursor = (q.cursor + 1) % len(snap.RecentNames)

	return loop, true
}

// Cursor returns the current fallback cursor position.
func (q *Queue) Cursor() int {
	return q.cursor
}
