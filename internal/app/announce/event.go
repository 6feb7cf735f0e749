package announce

import "github.com/osa030/welcomewall/internal/domain/arrival"

// EventType represents an announcement cycle event type.
type EventType int

const (
	EventShown    EventType = iota // Announcement became visible
	EventCleared                   // Announcement was hidden
	EventWentIdle                  // Cycle is idle with nothing to announce
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventShown:
		return "shown"
	case EventCleared:
		return "cleared"
	case EventWentIdle:
		return "went_idle"
	default:
		return "unknown"
	}
}

// Event represents an announcement cycle event.
type Event struct {
	Type    EventType
	Arrival *arrival.Arrival // Announced arrival (nil for EventWentIdle)
	State   State            // Cycle state after the transition
}
