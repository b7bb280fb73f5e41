package placement

import (
	"math"
	"testing"

	"github.com/skitterwm/skitter/internal/geometry"
	"github.com/skitterwm/skitter/internal/monitors"
)

type fakeNeighbors struct {
	set []monitors.Descriptor
}

func (f fakeNeighbors) AdjacentTo(mon monitors.Descriptor, dir monitors.Direction) (monitors.Descriptor, bool) {
	for _, m := range f.set {
		if m.StableID == mon.StableID {
			continue
		}
		switch dir {
		case monitors.DirLeft:
			if m.Bounds.Right() == mon.Bounds.X {
				return m, true
			}
		case monitors.DirRight:
			if m.Bounds.X == mon.Bounds.Right() {
				return m, true
			}
		case monitors.DirUp:
			if m.Bounds.Bottom() == mon.Bounds.Y {
				return m, true
			}
		case monitors.DirDown:
			if m.Bounds.Y == mon.Bounds.Bottom() {
				return m, true
			}
		}
	}
	return monitors.Descriptor{}, false
}

func mon(id string, bounds geometry.Rect, scale float64, primary bool) monitors.Descriptor {
	return monitors.Descriptor{
		StableID: id,
		Name:     id,
		Bounds:   bounds,
		WorkArea: bounds,
		Scale:    geometry.Scale{X: scale, Y: scale},
		Primary:  primary,
	}
}

func TestOppositeWrapOffLeftEdge(t *testing.T) {
	m := mon("m0", geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, 1, true)
	opts := WrapOptions{Enabled: true, Mode: WrapOpposite}

	// 30px past the left edge, moving left.
	target := geometry.Rect{X: -30, Y: 200, Width: 300, Height: 200}
	got := ResolveWrap(target, -100, 0, m, fakeNeighbors{}, opts)

	if got.X != 1920-30 {
		t.Fatalf("wrapped X = %v, want %v", got.X, 1920-30)
	}
	if got.Y != 200 {
		t.Fatalf("wrapped Y = %v, want unchanged 200", got.Y)
	}
}

func TestOppositeWrapOffRightEdge(t *testing.T) {
	m := mon("m0", geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, 1, true)
	opts := WrapOptions{Enabled: true, Mode: WrapOpposite}

	// Right edge at 1950, 30px past the monitor's right edge.
	target := geometry.Rect{X: 1650, Y: 400, Width: 300, Height: 200}
	got := ResolveWrap(target, 100, 0, m, fakeNeighbors{}, opts)

	// Re-enters from the left with the same overflow.
	if got.Right() != 30 {
		t.Fatalf("wrapped right edge = %v, want 30", got.Right())
	}
	if got.Y != 400 {
		t.Fatalf("wrapped Y = %v, want unchanged 400", got.Y)
	}
}

func TestAdjacentWrapPreservesLogicalSize(t *testing.T) {
	left := mon("left", geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, 1, true)
	right := mon("right", geometry.Rect{X: 1920, Y: 0, Width: 3840, Height: 2160}, 2, false)
	opts := WrapOptions{Enabled: true, Mode: WrapAdjacent}

	target := geometry.Rect{X: 1800, Y: 100, Width: 400, Height: 300}
	got := ResolveWrap(target, 100, 0, left, fakeNeighbors{set: []monitors.Descriptor{left, right}}, opts)

	// Flush against the entering edge of the 2x monitor, physical size doubled.
	if got.X != 1920 {
		t.Fatalf("X = %v, want flush at 1920", got.X)
	}
	if got.Width != 800 || got.Height != 600 {
		t.Fatalf("size = %vx%v, want 800x600 (logical size preserved at 2x)", got.Width, got.Height)
	}
	if got.Y != 100 {
		t.Fatalf("Y = %v, want 100", got.Y)
	}
}

func TestAdjacentFallsBackToOppositeWithoutNeighbor(t *testing.T) {
	m := mon("m0", geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, 1, true)
	opts := WrapOptions{Enabled: true, Mode: WrapAdjacent}

	target := geometry.Rect{X: -50, Y: 300, Width: 200, Height: 200}
	got := ResolveWrap(target, -10, 0, m, fakeNeighbors{}, opts)

	if got.X != 1920-50 {
		t.Fatalf("X = %v, want opposite-wrap fallback %v", got.X, 1920-50)
	}
}

func TestSmartPrefersAdjacent(t *testing.T) {
	left := mon("left", geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, 1, true)
	right := mon("right", geometry.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}, 1, false)
	opts := WrapOptions{Enabled: true, Mode: WrapSmart}

	target := geometry.Rect{X: 1800, Y: 100, Width: 400, Height: 300}
	got := ResolveWrap(target, 50, 0, left, fakeNeighbors{set: []monitors.Descriptor{left, right}}, opts)

	if got.X != 1920 {
		t.Fatalf("X = %v, want adjacent placement at 1920", got.X)
	}
}

func TestNoWrapWhenDisabledOrInside(t *testing.T) {
	m := mon("m0", geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, 1, true)

	outside := geometry.Rect{X: -50, Y: 300, Width: 200, Height: 200}
	if got := ResolveWrap(outside, -10, 0, m, fakeNeighbors{}, WrapOptions{Enabled: false}); got != outside {
		t.Fatalf("disabled wrap altered target: %+v", got)
	}

	inside := geometry.Rect{X: 100, Y: 100, Width: 200, Height: 200}
	opts := WrapOptions{Enabled: true, Mode: WrapOpposite}
	if got := ResolveWrap(inside, -10, 0, m, fakeNeighbors{}, opts); got != inside {
		t.Fatalf("in-bounds target altered: %+v", got)
	}
}

func TestWrapIgnoresEdgesAgainstTravelDirection(t *testing.T) {
	m := mon("m0", geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, 1, true)
	opts := WrapOptions{Enabled: true, Mode: WrapOpposite}

	// Hanging off the left edge but pushed downward only.
	target := geometry.Rect{X: -50, Y: 300, Width: 200, Height: 200}
	if got := ResolveWrap(target, 0, 40, m, fakeNeighbors{}, opts); got != target {
		t.Fatalf("perpendicular push triggered a wrap: %+v", got)
	}
}

func TestWrapUsesWorkAreaWhenRequested(t *testing.T) {
	m := mon("m0", geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, 1, true)
	m.WorkArea = geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1040} // 40px taskbar
	opts := WrapOptions{Enabled: true, Mode: WrapOpposite, RespectWorkArea: true}

	// Bottom edge at 1060: inside full bounds, past the work area.
	target := geometry.Rect{X: 500, Y: 860, Width: 300, Height: 200}
	got := ResolveWrap(target, 0, 30, m, fakeNeighbors{}, opts)

	if got.Bottom() != 20 {
		t.Fatalf("wrapped bottom = %v, want 20 (re-enter from top by overflow)", got.Bottom())
	}
	if math.Abs(got.X-500) > 1e-9 {
		t.Fatalf("X = %v, want unchanged 500", got.X)
	}
}
