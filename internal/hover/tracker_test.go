package hover

import (
	"testing"
	"time"
)

func TestIdleToHoveringOnFirstTickWithin(t *testing.T) {
	tr := NewTracker(time.Second, true)
	now := time.Now()

	if got := tr.Update(1, true, now); got != Hovering {
		t.Fatalf("state = %v, want Hovering", got)
	}
}

func TestSuppressedAtExactTimeout(t *testing.T) {
	tr := NewTracker(time.Second, true)
	start := time.Now()

	tr.Update(1, true, start)
	// Still hovering just before the timeout.
	if got := tr.Update(1, true, start.Add(999*time.Millisecond)); got != Hovering {
		t.Fatalf("state before timeout = %v, want Hovering", got)
	}
	// First tick at or after the timeout suppresses.
	if got := tr.Update(1, true, start.Add(time.Second)); got != Suppressed {
		t.Fatalf("state at timeout = %v, want Suppressed", got)
	}
	if !tr.Suppressed(1) {
		t.Fatalf("Suppressed(1) = false, want true")
	}
}

func TestExitResetsImmediately(t *testing.T) {
	tr := NewTracker(time.Second, true)
	start := time.Now()

	tr.Update(1, true, start)
	tr.Update(1, true, start.Add(2*time.Second))
	if !tr.Suppressed(1) {
		t.Fatalf("expected suppression after timeout")
	}

	// Cursor leaves: the very next tick is Idle again.
	if got := tr.Update(1, false, start.Add(3*time.Second)); got != Idle {
		t.Fatalf("state after exit = %v, want Idle", got)
	}
	if tr.Suppressed(1) {
		t.Fatalf("Suppressed(1) = true after exit, want false")
	}

	// Re-approach restarts the timer from scratch.
	if got := tr.Update(1, true, start.Add(4*time.Second)); got != Hovering {
		t.Fatalf("state on re-approach = %v, want Hovering", got)
	}
}

func TestExitDuringHoveringResetsTimer(t *testing.T) {
	tr := NewTracker(time.Second, true)
	start := time.Now()

	tr.Update(1, true, start)
	tr.Update(1, false, start.Add(500*time.Millisecond))
	tr.Update(1, true, start.Add(600*time.Millisecond))

	// 1s after the original entry but only 400ms after re-entry.
	if got := tr.Update(1, true, start.Add(time.Second)); got != Hovering {
		t.Fatalf("state = %v, want Hovering (timer restarted)", got)
	}
	if got := tr.Update(1, true, start.Add(1600*time.Millisecond)); got != Suppressed {
		t.Fatalf("state = %v, want Suppressed", got)
	}
}

func TestDisabledTrackerNeverSuppresses(t *testing.T) {
	tr := NewTracker(time.Millisecond, false)
	start := time.Now()

	tr.Update(1, true, start)
	if got := tr.Update(1, true, start.Add(time.Hour)); got != Idle {
		t.Fatalf("state = %v, want Idle when disabled", got)
	}
	if tr.Suppressed(1) {
		t.Fatalf("disabled tracker should never suppress")
	}
}

func TestDisablingClearsState(t *testing.T) {
	tr := NewTracker(time.Millisecond, true)
	start := time.Now()

	tr.Update(1, true, start)
	tr.Update(1, true, start.Add(time.Second))
	if !tr.Suppressed(1) {
		t.Fatalf("expected suppression before disable")
	}

	tr.Configure(time.Millisecond, false)
	tr.Configure(time.Millisecond, true)
	if tr.Suppressed(1) {
		t.Fatalf("expected clean state after disable/enable cycle")
	}
}

func TestWindowsAreIndependent(t *testing.T) {
	tr := NewTracker(time.Second, true)
	start := time.Now()

	tr.Update(1, true, start)
	tr.Update(2, true, start.Add(900*time.Millisecond))

	tr.Update(1, true, start.Add(time.Second))
	tr.Update(2, true, start.Add(time.Second))

	if !tr.Suppressed(1) {
		t.Fatalf("window 1 should be suppressed")
	}
	if tr.Suppressed(2) {
		t.Fatalf("window 2 should still be hovering")
	}
}

func TestForget(t *testing.T) {
	tr := NewTracker(time.Millisecond, true)
	start := time.Now()
	tr.Update(1, true, start)
	tr.Update(1, true, start.Add(time.Second))
	tr.Forget(1)
	if tr.Suppressed(1) {
		t.Fatalf("forgotten window should not be suppressed")
	}
}
