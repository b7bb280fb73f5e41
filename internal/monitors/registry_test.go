package monitors

import (
	"errors"
	"testing"

	"github.com/skitterwm/skitter/internal/geometry"
)

type fakeEnumerator struct {
	sets  [][]Descriptor
	calls int
	err   error
}

func (f *fakeEnumerator) Enumerate() ([]Descriptor, error) {
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls
	if idx >= len(f.sets) {
		idx = len(f.sets) - 1
	}
	f.calls++
	return f.sets[idx], nil
}

func mon(id string, x, y, w, h float64, primary bool) Descriptor {
	bounds := geometry.Rect{X: x, Y: y, Width: w, Height: h}
	return Descriptor{
		StableID: id,
		Name:     id,
		Bounds:   bounds,
		WorkArea: bounds,
		Scale:    geometry.Scale{X: 1, Y: 1},
		Primary:  primary,
	}
}

func TestResolvePicksGreatestOverlap(t *testing.T) {
	enum := &fakeEnumerator{sets: [][]Descriptor{{
		mon("left", 0, 0, 1920, 1080, true),
		mon("right", 1920, 0, 1920, 1080, false),
	}}}
	reg := NewRegistry(enum)

	// Window mostly on the right monitor.
	win := geometry.Rect{X: 1800, Y: 100, Width: 400, Height: 300}
	got, err := reg.Resolve(win)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StableID != "right" {
		t.Fatalf("resolved %q, want right", got.StableID)
	}
}

func TestResolveTieBreakPrefersPrimary(t *testing.T) {
	enum := &fakeEnumerator{sets: [][]Descriptor{{
		mon("b-monitor", 0, 0, 1000, 1000, false),
		mon("a-monitor", 1000, 0, 1000, 1000, true),
	}}}
	reg := NewRegistry(enum)

	// Straddles the seam exactly: 100px on each side.
	win := geometry.Rect{X: 900, Y: 0, Width: 200, Height: 100}
	got, err := reg.Resolve(win)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StableID != "a-monitor" {
		t.Fatalf("resolved %q, want primary a-monitor", got.StableID)
	}
}

func TestResolveOffscreenFallsBackToTieBreak(t *testing.T) {
	enum := &fakeEnumerator{sets: [][]Descriptor{{
		mon("zz", 0, 0, 1000, 1000, true),
		mon("aa", 1000, 0, 1000, 1000, false),
	}}}
	reg := NewRegistry(enum)

	// No overlap with any monitor: zero overlap everywhere, primary wins.
	win := geometry.Rect{X: 5000, Y: 5000, Width: 100, Height: 100}
	got, err := reg.Resolve(win)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StableID != "zz" {
		t.Fatalf("resolved %q, want zz", got.StableID)
	}
}

func TestInvalidateSwapsSnapshot(t *testing.T) {
	enum := &fakeEnumerator{sets: [][]Descriptor{
		{mon("one", 0, 0, 1920, 1080, true)},
		{
			mon("one", 0, 0, 1920, 1080, true),
			mon("two", 1920, 0, 1920, 1080, false),
		},
	}}
	reg := NewRegistry(enum)

	first, err := reg.All()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 monitor, got %d", len(first))
	}

	// Without invalidation the cache is reused.
	again, _ := reg.All()
	if len(again) != 1 || enum.calls != 1 {
		t.Fatalf("expected cached snapshot, calls=%d", enum.calls)
	}

	reg.Invalidate()
	second, err := reg.All()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected 2 monitors after invalidate, got %d", len(second))
	}
}

func TestAllKeepsLastSnapshotOnFailure(t *testing.T) {
	enum := &fakeEnumerator{sets: [][]Descriptor{
		{mon("one", 0, 0, 1920, 1080, true)},
	}}
	reg := NewRegistry(enum)
	if _, err := reg.All(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	enum.err = errors.New("x11 gone")
	reg.Invalidate()
	snap, err := reg.All()
	if err == nil {
		t.Fatalf("expected error from failed refresh")
	}
	if len(snap) != 1 {
		t.Fatalf("expected previous snapshot to survive, got %d monitors", len(snap))
	}
}

func TestAdjacentTo(t *testing.T) {
	left := mon("left", 0, 0, 1920, 1080, true)
	right := mon("right", 1920, 0, 1920, 1080, false)
	enum := &fakeEnumerator{sets: [][]Descriptor{{left, right}}}
	reg := NewRegistry(enum)

	got, ok := reg.AdjacentTo(left, DirRight)
	if !ok || got.StableID != "right" {
		t.Fatalf("AdjacentTo(left, right) = %v, %v", got.StableID, ok)
	}
	if _, ok := reg.AdjacentTo(left, DirLeft); ok {
		t.Fatalf("expected no neighbor to the left")
	}
	got, ok = reg.AdjacentTo(right, DirLeft)
	if !ok || got.StableID != "left" {
		t.Fatalf("AdjacentTo(right, left) = %v, %v", got.StableID, ok)
	}
}

func TestValidateSetRejectsDoublePrimary(t *testing.T) {
	enum := &fakeEnumerator{sets: [][]Descriptor{{
		mon("a", 0, 0, 100, 100, true),
		mon("b", 100, 0, 100, 100, true),
	}}}
	reg := NewRegistry(enum)
	if _, err := reg.All(); err == nil {
		t.Fatalf("expected error for two primary monitors")
	}
}

func TestStableIDForIsDeterministic(t *testing.T) {
	b := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	if StableIDFor("DP-1", b) != StableIDFor("DP-1", b) {
		t.Fatalf("stable ID should be deterministic")
	}
	if StableIDFor("DP-1", b) == StableIDFor("DP-2", b) {
		t.Fatalf("different outputs should get different IDs")
	}
}
