package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/skitterwm/skitter/internal/geometry"
)

// Cursor samples the pointer and the CTRL modifier from the X server.
type Cursor struct {
	conn *Connection
}

// NewCursor returns a cursor source bound to the connection.
func NewCursor(conn *Connection) *Cursor {
	return &Cursor{conn: conn}
}

// Sample returns the pointer position in root coordinates.
func (c *Cursor) Sample() (geometry.Point, error) {
	reply, err := xproto.QueryPointer(c.conn.XUtil.Conn(), c.conn.Root).Reply()
	if err != nil {
		return geometry.Point{}, fmt.Errorf("query pointer: %w", err)
	}
	return geometry.Point{X: float64(reply.RootX), Y: float64(reply.RootY)}, nil
}

// OverrideActive reports whether either CTRL key is held.
func (c *Cursor) OverrideActive() (bool, error) {
	reply, err := xproto.QueryPointer(c.conn.XUtil.Conn(), c.conn.Root).Reply()
	if err != nil {
		return false, fmt.Errorf("query pointer: %w", err)
	}
	return reply.Mask&xproto.KeyButMaskControl != 0, nil
}
