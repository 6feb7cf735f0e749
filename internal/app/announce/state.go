// Package announce provides the announcement cycle state machine.
package announce

// State represents the announcement cycle state.
type State int

const (
	StateIdle     State = iota // Nothing on display, ready to dequeue
	StateShowing               // An announcement is visible
	StateCooldown              // Quiet gap between announcements
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateShowing:
		return "showing"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}
