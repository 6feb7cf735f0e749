package announce

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/welcomewall/internal/app/effects"
	"github.com/osa030/welcomewall/internal/app/queue"
	"github.com/osa030/welcomewall/internal/domain/arrival"
)

// Config holds controller configuration.
type Config struct {
	DisplayDuration time.Duration // How long an announcement stays visible
	Gap             time.Duration // Quiet gap before the next dequeue attempt
	SpeechDelay     time.Duration // Offset between visual trigger and speech
	StartMuted      bool
}

// Controller serializes presentation of one announcement at a time.
//
// The cycle is Idle -> Showing -> Cooldown -> Idle. Only Idle accepts a new
// announcement: an arrival enqueued while Showing or Cooldown is active waits
// for the next Idle transition, it never preempts the current display. Entry
// into Showing fires the side effects exactly once; the burst always, tone
// and speech only when unmuted, with speech shifted by SpeechDelay so the
// tone cue plays first.
type Controller struct {
	mu sync.Mutex

	state    State
	current  *arrival.Arrival
	queue    *queue.Queue
	snapshot arrival.Snapshot // latest poll, feeds the fallback loop

	muted bool

	// Timers, one cancel func per concern
	showCancel   func()
	gapCancel    func()
	speechCancel func()

	fx      *effects.Set
	config  Config
	eventCh chan Event

	// newTimer arms a single-shot timer and returns its cancel func.
	// Replaced in tests to drive transitions deterministically.
	newTimer func(d time.Duration, fn func()) func()

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewController creates a new announcement controller.
func NewController(cfg Config, fx *effects.Set) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		state:   StateIdle,
		queue:   queue.New(),
		muted:   cfg.StartMuted,
		fx:      fx,
		config:  cfg,
		eventCh: make(chan Event, 16),
		newTimer: func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Enqueue appends a real arrival and starts a cycle if the controller is
// idle. While Showing or Cooldown is active this only grows the queue.
func (c *Controller) Enqueue(a arrival.Arrival) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.queue.Enqueue(a)
	c.advanceLocked()
}

// ObserveSnapshot stores the latest snapshot for the fallback loop and, if
// idle, attempts a cycle (fresh names may have made fallback possible).
func (c *Controller) ObserveSnapshot(snap arrival.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.snapshot = snap
	c.advanceLocked()
}

// Current returns the currently displayed arrival.
func (c *Controller) Current() (*arrival.Arrival, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, false
	}
	cp := *c.current
	return &cp, true
}

// StateOf returns the current cycle state.
func (c *Controller) StateOf() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// QueueLen returns the number of pending real arrivals.
func (c *Controller) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// SetMuted sets the mute flag. Muting is sampled when an announcement
// enters Showing: it suppresses the next tone/speech dispatch, never a
// sound already playing.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
}

// Muted returns the mute flag.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Close tears down the controller: all armed timers are cancelled and any
// in-flight speech utterance is cut off. No side effect fires after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	c.stopTimersLocked()
	c.current = nil
	c.state = StateIdle
	close(c.eventCh)
	c.mu.Unlock()

	c.fx.Close()
}

// advanceLocked attempts to start the next announcement and reports
// whether one started. Zero-duration pass-through: a no-op unless the
// cycle is Idle. Must be called with lock held.
func (c *Controller) advanceLocked() bool {
	if c.closed || c.state != StateIdle {
		return false
	}

	a, ok := c.queue.DequeueOrFallback(c.snapshot)
	if !ok {
		// Both queue and fallback are empty: stay idle until the next
		// poll enqueues something.
		return false
	}

	c.current = &a
	c.state = StateShowing
	zlog.Debug().Msgf("announce: showing id=%s name=%s loop=%v", a.ID, a.DisplayName, a.IsLoop())
	c.sendEventLocked(Event{Type: EventShown, Arrival: c.current, State: c.state})

	// Entry action: side effects fire exactly once per announcement.
	// The burst is unconditional; tone and speech are gated by the mute
	// flag sampled at this instant.
	muted := c.muted
	go c.fire(c.fx.Burst, a)
	if !muted {
		go c.fire(c.fx.Tone, a)
		if c.config.SpeechDelay > 0 {
			shownID := a.ID
			c.speechCancel = c.newTimer(c.config.SpeechDelay, func() {
				c.onSpeechDue(shownID, a)
			})
		} else {
			go c.fire(c.fx.Speech, a)
		}
	}

	c.showCancel = c.newTimer(c.config.DisplayDuration, c.onDisplayExpired)
	return true
}

// onSpeechDue fires the delayed speech dispatch, unless the display moved on.
func (c *Controller) onSpeechDue(shownID string, a arrival.Arrival) {
	c.mu.Lock()
	c.speechCancel = nil
	if c.closed || c.current == nil || c.current.ID != shownID {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.fire(c.fx.Speech, a)
}

// onDisplayExpired hides the current announcement and enters Cooldown.
func (c *Controller) onDisplayExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateShowing {
		return
	}
	c.showCancel = nil

	// A speech timer outliving the display window is dropped with it.
	if c.speechCancel != nil {
		c.speechCancel()
		c.speechCancel = nil
	}

	cleared := c.current
	c.current = nil
	c.state = StateCooldown
	c.sendEventLocked(Event{Type: EventCleared, Arrival: cleared, State: c.state})

	c.gapCancel = c.newTimer(c.config.Gap, c.onGapExpired)
}

// onGapExpired re-enters Idle and immediately attempts the next dequeue.
func (c *Controller) onGapExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateCooldown {
		return
	}
	c.gapCancel = nil
	c.state = StateIdle
	if !c.advanceLocked() {
		c.sendEventLocked(Event{Type: EventWentIdle, State: c.state})
	}
}

// fire dispatches one side effect, swallowing failures: an announcement is
// delivered once its card is shown, whether or not audio played.
func (c *Controller) fire(d effects.Dispatcher, a arrival.Arrival) {
	if err := d.Dispatch(c.ctx, a); err != nil {
		zlog.Warn().Msgf("announce: %s dispatch failed: %v", d.Name(), err)
	}
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- e:
	default:
		// Channel full, drop event
	}
}

// stopTimersLocked cancels every armed timer.
// Must be called with lock held.
func (c *Controller) stopTimersLocked() {
	if c.showCancel != nil {
		c.showCancel()
		c.showCancel = nil
	}
	if c.gapCancel != nil {
		c.gapCancel()
		c.gapCancel = nil
	}
	if c.speechCancel != nil {
		c.speechCancel()
		c.speechCancel = nil
	}
}
