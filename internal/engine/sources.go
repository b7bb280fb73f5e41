// Package engine runs the avoidance loop: it polls the cursor and the
// tracked window set, and pushes always-on-top windows away from the
// pointer through the wrap, clamp and animation stages.
package engine

import (
	"github.com/skitterwm/skitter/internal/geometry"
)

// Window is one tracked window and its current physical bounds.
type Window struct {
	Handle uint32
	Bounds geometry.Rect
}

// CursorSource samples the pointer. Implemented by the X11 layer.
type CursorSource interface {
	// Sample returns the pointer position in physical pixels.
	Sample() (geometry.Point, error)
	// OverrideActive reports whether the override modifier (CTRL) is
	// held, which pauses pushes while active.
	OverrideActive() (bool, error)
}

// WindowSource enumerates and moves windows. Implemented by the X11
// layer.
type WindowSource interface {
	// ListTracked returns the windows the engine should react to. With
	// all unset the set is filtered to always-on-top windows.
	ListTracked(all bool) ([]Window, error)
	// Move repositions a window to the given physical bounds.
	Move(handle uint32, bounds geometry.Rect) error
	// IsValid reports whether the handle still refers to a live window.
	IsValid(handle uint32) bool
}
