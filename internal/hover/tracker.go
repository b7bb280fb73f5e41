// Package hover suppresses pushes for windows the pointer has lingered
// near beyond a timeout, so a window the user is deliberately hovering
// stops fleeing.
package hover

import (
	"time"
)

// State is the per-window hover state.
type State int

const (
	Idle State = iota
	Hovering
	Suppressed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Hovering:
		return "hovering"
	case Suppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

type entry struct {
	state State
	since time.Time
}

// Tracker runs one hover state machine per window handle. It is not
// safe for concurrent use; the engine drives it from the tick thread.
type Tracker struct {
	timeout time.Duration
	enabled bool
	windows map[uint32]*entry
}

// NewTracker returns a tracker with the given timeout. A disabled
// tracker reports Idle for every window and never suppresses.
func NewTracker(timeout time.Duration, enabled bool) *Tracker {
	return &Tracker{
		timeout: timeout,
		enabled: enabled,
		windows: make(map[uint32]*entry),
	}
}

// Configure updates the timeout and enable flag. Disabling resets all
// per-window state.
func (t *Tracker) Configure(timeout time.Duration, enabled bool) {
	t.timeout = timeout
	if t.enabled && !enabled {
		t.windows = make(map[uint32]*entry)
	}
	t.enabled = enabled
}

// Update advances the state machine for one window and returns the
// resulting state. within reports whether the cursor is inside the
// proximity threshold of the window this tick. Any tick outside the
// threshold resets the window to Idle immediately.
func (t *Tracker) Update(handle uint32, within bool, now time.Time) State {
	if !t.enabled {
		return Idle
	}
	if !within {
		delete(t.windows, handle)
		return Idle
	}

	e, ok := t.windows[handle]
	if !ok {
		e = &entry{state: Hovering, since: now}
		t.windows[handle] = e
		return Hovering
	}
	if e.state == Hovering && now.Sub(e.since) >= t.timeout {
		e.state = Suppressed
	}
	return e.state
}

// Suppressed reports whether pushes are currently short-circuited for
// the window.
func (t *Tracker) Suppressed(handle uint32) bool {
	if !t.enabled {
		return false
	}
	e, ok := t.windows[handle]
	return ok && e.state == Suppressed
}

// Forget drops all state for a window that disappeared.
func (t *Tracker) Forget(handle uint32) {
	delete(t.windows, handle)
}

// Reset clears every window's hover state.
func (t *Tracker) Reset() {
	t.windows = make(map[uint32]*entry)
}
