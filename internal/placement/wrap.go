// Package placement turns a raw push target into a rectangle that is
// actually safe to move a window to: wrapping across monitor edges and
// clamping against monitor bounds.
package placement

import (
	"github.com/skitterwm/skitter/internal/geometry"
	"github.com/skitterwm/skitter/internal/monitors"
)

// WrapMode selects what happens when a push would carry a window past a
// monitor boundary.
type WrapMode string

const (
	// WrapAdjacent moves the window onto the neighboring monitor in the
	// direction of travel, falling back to WrapOpposite without one.
	WrapAdjacent WrapMode = "adjacent"
	// WrapOpposite re-enters the same monitor from the far edge.
	WrapOpposite WrapMode = "opposite"
	// WrapSmart prefers adjacent and falls back to opposite.
	WrapSmart WrapMode = "smart"
)

// Valid reports whether m is a known wrap mode.
func (m WrapMode) Valid() bool {
	switch m {
	case WrapAdjacent, WrapOpposite, WrapSmart:
		return true
	}
	return false
}

// WrapOptions configures the resolver.
type WrapOptions struct {
	Enabled         bool
	Mode            WrapMode
	RespectWorkArea bool
}

// NeighborLookup finds the monitor adjacent to a given edge. The monitor
// registry implements it.
type NeighborLookup interface {
	AdjacentTo(mon monitors.Descriptor, dir monitors.Direction) (monitors.Descriptor, bool)
}

// ResolveWrap returns a replacement target when the proposed rectangle
// crosses the monitor's boundary in the direction of travel, or the
// original target when no wrap applies. travel is the push displacement
// that produced the target; only edges crossed in the travel direction
// wrap, so a window parked against an edge is not bounced around by
// perpendicular pushes.
func ResolveWrap(target geometry.Rect, travelDX, travelDY float64, mon monitors.Descriptor, neighbors NeighborLookup, opts WrapOptions) geometry.Rect {
	if !opts.Enabled {
		return target
	}
	area := mon.Area(opts.RespectWorkArea)

	dir, overflow, crossed := crossing(target, travelDX, travelDY, area)
	if !crossed {
		return target
	}

	mode := opts.Mode
	if mode == WrapAdjacent || mode == WrapSmart {
		if neighbor, ok := neighbors.AdjacentTo(mon, dir); ok {
			return placeOnNeighbor(target, dir, mon, neighbor, opts.RespectWorkArea)
		}
		mode = WrapOpposite
	}
	if mode == WrapOpposite {
		return wrapOpposite(target, dir, overflow, area)
	}
	return target
}

// crossing reports which work-area edge the target crosses in the travel
// direction and by how much.
func crossing(target geometry.Rect, dx, dy float64, area geometry.Rect) (monitors.Direction, float64, bool) {
	if dx < 0 && target.X < area.X {
		return monitors.DirLeft, area.X - target.X, true
	}
	if dx > 0 && target.Right() > area.Right() {
		return monitors.DirRight, target.Right() - area.Right(), true
	}
	if dy < 0 && target.Y < area.Y {
		return monitors.DirUp, area.Y - target.Y, true
	}
	if dy > 0 && target.Bottom() > area.Bottom() {
		return monitors.DirDown, target.Bottom() - area.Bottom(), true
	}
	return 0, 0, false
}

// wrapOpposite re-enters from the far edge of the same monitor,
// preserving the perpendicular coordinate. Crossing the left edge by N
// pixels lands the window at area.Right - N.
func wrapOpposite(target geometry.Rect, dir monitors.Direction, overflow float64, area geometry.Rect) geometry.Rect {
	out := target
	switch dir {
	case monitors.DirLeft:
		out.X = area.Right() - overflow
	case monitors.DirRight:
		out.X = area.X + overflow - target.Width
	case monitors.DirUp:
		out.Y = area.Bottom() - overflow
	case monitors.DirDown:
		out.Y = area.Y + overflow - target.Height
	}
	return out
}

// placeOnNeighbor enters the neighbor flush at the shared edge. The
// window's logical size is preserved: physical dimensions are rescaled
// from the source monitor's DPI to the neighbor's.
func placeOnNeighbor(target geometry.Rect, dir monitors.Direction, from, to monitors.Descriptor, respectWorkArea bool) geometry.Rect {
	area := to.Area(respectWorkArea)

	width := target.Width / from.Scale.X * to.Scale.X
	height := target.Height / from.Scale.Y * to.Scale.Y

	out := geometry.Rect{Width: width, Height: height}
	switch dir {
	case monitors.DirLeft:
		out.X = area.Right() - width
		out.Y = clampAxis(target.Y, area.Y, area.Bottom()-height)
	case monitors.DirRight:
		out.X = area.X
		out.Y = clampAxis(target.Y, area.Y, area.Bottom()-height)
	case monitors.DirUp:
		out.Y = area.Bottom() - height
		out.X = clampAxis(target.X, area.X, area.Right()-width)
	case monitors.DirDown:
		out.Y = area.Y
		out.X = clampAxis(target.X, area.X, area.Right()-width)
	}
	return out
}

func clampAxis(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
