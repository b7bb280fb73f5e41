// Package proximity decides whether a window is close enough to the
// pointer to react, and computes the repulsion vector to apply.
package proximity

import (
	"math"

	"github.com/skitterwm/skitter/internal/geometry"
)

// Params holds the detector thresholds in logical pixels. They are
// converted to physical pixels per monitor so the on-screen reaction is
// the same regardless of DPI scale.
type Params struct {
	ThresholdLogical    float64
	PushDistanceLogical float64
}

// Push is the displacement to apply to a window, in physical pixels,
// plus the cursor-to-window distance that triggered it.
type Push struct {
	DX       float64
	DY       float64
	Distance float64
}

// Evaluate reports whether the window should be pushed away from the
// cursor and, if so, by how much. Cursor and window bounds are physical
// pixels; scale is the window's monitor DPI scale.
func Evaluate(cursor geometry.Point, window geometry.Rect, scale geometry.Scale, p Params) (Push, bool, error) {
	dist, err := geometry.Distance(cursor, window)
	if err != nil {
		return Push{}, false, err
	}

	threshold := p.ThresholdLogical * scale.X
	if dist > threshold {
		return Push{}, false, nil
	}

	ux, uy := pushDirection(cursor, window)
	return Push{
		DX:       ux * p.PushDistanceLogical * scale.X,
		DY:       uy * p.PushDistanceLogical * scale.Y,
		Distance: dist,
	}, true, nil
}

// pushDirection returns the unit vector pointing away from the cursor.
// Outside the window the direction runs from the cursor through the
// nearest edge point; a cursor equidistant from two edges sits at a
// corner, which yields a normalized diagonal rather than snapping to one
// axis. Inside the window the direction runs from the cursor through the
// window center.
func pushDirection(cursor geometry.Point, window geometry.Rect) (float64, float64) {
	var dx, dy float64
	if window.Contains(cursor) {
		center := window.Center()
		dx = center.X - cursor.X
		dy = center.Y - cursor.Y
	} else {
		nx := clamp(cursor.X, window.X, window.Right())
		ny := clamp(cursor.Y, window.Y, window.Bottom())
		dx = nx - cursor.X
		dy = ny - cursor.Y
	}

	mag := math.Hypot(dx, dy)
	if mag == 0 {
		// Cursor exactly at the window center: push right.
		return 1, 0
	}
	return dx / mag, dy / mag
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
