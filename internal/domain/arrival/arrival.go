// Package arrival provides the Arrival and Snapshot domain entities.
package arrival

import (
	"strings"
	"time"
)

// LoopIDPrefix marks arrivals synthesized by the fallback loop.
// Loop ids embed a timestamp so they never collide with real feed ids
// and never enter the dedup bookkeeping.
const LoopIDPrefix = "loop-"

// Arrival represents a single user-join event.
// Identity is ID: two arrivals with the same id are the same event,
// even when they appear in separate snapshots.
type Arrival struct {
	ID          string    `json:"id"`           // Opaque unique id from the feed
	DisplayName string    `json:"display_name"` // Name shown on the announcement card
	JoinedAt    time.Time `json:"joined_at"`    // Join time as reported by the feed
}

// IsLoop reports whether this arrival was synthesized by the fallback loop
// rather than observed on the live feed.
func (a Arrival) IsLoop() bool {
	return strings.HasPrefix(a.ID, LoopIDPrefix)
}

// Snapshot is one poll's normalized view of the feed.
// A snapshot is produced whole by each poll and superseded by the next;
// it is never mutated in place.
type Snapshot struct {
	Total       int      // Aggregate joined-user count, non-negative
	Latest      *Arrival // Most recent arrival, nil when the feed has none
	RecentNames []string // Recent display names, most-recent-first, bounded
}

// HasLatest reports whether the snapshot carries a latest arrival.
func (s Snapshot) HasLatest() bool {
	return s.Latest != nil
}

// HasNames reports whether the snapshot carries any recent names for the
// fallback loop to replay.
func (s Snapshot) HasNames() bool {
	return len(s.RecentNames) > 0
}
