// Package dedup filters the snapshot stream down to unseen arrivals.
package dedup

import (
	"sync"

	"github.com/osa030/welcomewall/internal/domain/arrival"
)

// Deduplicator tracks the most recently observed arrival id and emits an
// arrival only the first time its id is seen.
//
// The first id-bearing observation after startup records the id without
// emitting anything, so a page-load does not replay the existing user base.
// Identity comparison is the only check: an id that regresses to an older
// value still counts as new.
//
// Safe for concurrent use; overlapping polls may observe snapshots in any
// order.
type Deduplicator struct {
	mu         sync.Mutex
	lastSeenID string
	primed     bool // set once the first id-bearing snapshot has been observed
}

// New creates a new deduplicator.
func New() *Deduplicator {
	return &Deduplicator{}
}

// Observe inspects a snapshot and returns the arrival to announce, if any.
// The returned arrival is a copy; the snapshot is not retained.
func (d *Deduplicator) Observe(snap arrival.Snapshot) (*arrival.Arrival, bool) {
	if !snap.HasLatest() {
		return nil, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	latest := *snap.Latest
	if latest.ID == d.lastSeenID {
		return nil, false
	}

	// Record unconditionally, before deciding whether to emit.
	d.lastSeenID = latest.ID
	if !d.primed {
		d.primed = true
		return nil, false
	}

	return &latest, true
}

// LastSeenID returns the id of the most recently observed arrival.
func (d *Deduplicator) LastSeenID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSeenID
}

// Primed reports whether the first id-bearing snapshot has been observed.
func (d *Deduplicator) Primed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.primed
}
