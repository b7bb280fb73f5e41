package monitors

import (
	"fmt"
	"hash/fnv"

	"github.com/skitterwm/skitter/internal/geometry"
)

// Descriptor describes one attached monitor. Bounds and WorkArea are in
// physical pixels; Scale converts to the 96-DPI logical space.
type Descriptor struct {
	StableID string
	Name     string
	Bounds   geometry.Rect
	WorkArea geometry.Rect
	Scale    geometry.Scale
	Primary  bool
}

// Area returns the work area when respectWorkArea is set, otherwise the
// full monitor bounds.
func (d Descriptor) Area(respectWorkArea bool) geometry.Rect {
	if respectWorkArea && !d.WorkArea.Empty() {
		return d.WorkArea
	}
	return d.Bounds
}

// StableIDFor derives a content-based monitor identifier that survives
// reconnection and enumeration reordering.
func StableIDFor(name string, bounds geometry.Rect) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s@%dx%d+%d+%d", name,
		int(bounds.Width), int(bounds.Height), int(bounds.X), int(bounds.Y))
	return fmt.Sprintf("%016x", h.Sum64())
}
