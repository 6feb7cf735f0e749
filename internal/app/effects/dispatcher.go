// Package effects provides the side-effect dispatchers fired per announcement.
package effects

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/welcomewall/internal/domain/arrival"
)

// Errors
var (
	// ErrPlaybackBlocked marks tone dispatch failures. Recovered locally:
	// an announcement counts as delivered once its card is shown.
	ErrPlaybackBlocked = errors.New("tone playback blocked")
	// ErrSpeechUnavailable marks speech dispatch failures.
	ErrSpeechUnavailable = errors.New("speech unavailable")
)

// Dispatcher is the interface for a single side effect.
// Dispatch is a stateless trigger: it starts the effect and returns
// without waiting for it to finish.
type Dispatcher interface {
	// Name returns the dispatcher name (used in config).
	Name() string
	// Dispatch fires the effect for the given arrival.
	Dispatch(ctx context.Context, a arrival.Arrival) error
	// Close releases any in-flight effect resources.
	Close() error
}

// Set holds the three dispatchers consumed by the announcement controller.
// Burst is never mute-gated; Tone and Speech are.
type Set struct {
	Burst  Dispatcher
	Tone   Dispatcher
	Speech Dispatcher
}

// Close closes all dispatchers in the set.
func (s *Set) Close() {
	_ = s.Burst.Close()
	_ = s.Tone.Close()
	_ = s.Speech.Close()
}

// noopDispatcher is used for effects disabled in config.
type noopDispatcher struct {
	name string
}

func (n *noopDispatcher) Name() string { return n.name }

func (n *noopDispatcher) Dispatch(context.Context, arrival.Arrival) error { return nil }

func (n *noopDispatcher) Close() error { return nil }
