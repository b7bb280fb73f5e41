package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/skitterwm/skitter/internal/engine"
	"github.com/skitterwm/skitter/internal/geometry"
)

// Windows is the window source: it enumerates tracked windows via EWMH
// and moves them.
type Windows struct {
	conn *Connection
}

// NewWindows returns a window source bound to the connection.
func NewWindows(conn *Connection) *Windows {
	return &Windows{conn: conn}
}

// ListTracked returns the windows the engine reacts to. By default the
// set is filtered to windows carrying _NET_WM_STATE_ABOVE; with all set
// every normal application window is included.
func (w *Windows) ListTracked(all bool) ([]engine.Window, error) {
	clients, err := ewmh.ClientListGet(w.conn.XUtil)
	if err != nil {
		return nil, fmt.Errorf("client list: %w", err)
	}

	var out []engine.Window
	for _, id := range clients {
		if !w.isNormalWindow(id) {
			continue
		}
		if !all && !w.isAlwaysOnTop(id) {
			continue
		}
		bounds, err := w.windowBounds(id)
		if err != nil {
			// Window vanished between the list and the query.
			continue
		}
		out = append(out, engine.Window{Handle: uint32(id), Bounds: bounds})
	}
	return out, nil
}

// Move repositions a window, preferring the EWMH moveresize request for
// WM compatibility and falling back to a direct configure.
func (w *Windows) Move(handle uint32, bounds geometry.Rect) error {
	id := xproto.Window(handle)
	x := int(math.Round(bounds.X))
	y := int(math.Round(bounds.Y))
	width := int(math.Round(bounds.Width))
	height := int(math.Round(bounds.Height))

	if err := ewmh.MoveresizeWindow(w.conn.XUtil, id, x, y, width, height); err != nil {
		win := xwindow.New(w.conn.XUtil, id)
		win.MoveResize(x, y, width, height)
	}
	return nil
}

// IsValid reports whether the handle still refers to a live window.
func (w *Windows) IsValid(handle uint32) bool {
	_, err := xproto.GetGeometry(w.conn.XUtil.Conn(), xproto.Drawable(handle)).Reply()
	return err == nil
}

// windowBounds returns the window's geometry in root coordinates.
func (w *Windows) windowBounds(id xproto.Window) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(w.conn.XUtil.Conn(), xproto.Drawable(id)).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}
	translate, err := xproto.TranslateCoordinates(w.conn.XUtil.Conn(), id, w.conn.Root, 0, 0).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{
		X:      float64(translate.DstX),
		Y:      float64(translate.DstY),
		Width:  float64(geom.Width),
		Height: float64(geom.Height),
	}, nil
}

func (w *Windows) isAlwaysOnTop(id xproto.Window) bool {
	states, err := ewmh.WmStateGet(w.conn.XUtil, id)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_ABOVE" {
			return true
		}
	}
	return false
}

// isNormalWindow filters out desktops, docks and other non-application
// windows the engine must never move.
func (w *Windows) isNormalWindow(id xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(w.conn.XUtil, id)
	if err != nil {
		// Can't determine the type: assume normal.
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLTIP",
			"_NET_WM_WINDOW_TYPE_MENU":
			return false
		}
	}
	return len(types) == 0
}
