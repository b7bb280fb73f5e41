package monitors

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/skitterwm/skitter/internal/geometry"
)

// Enumerator queries the platform for the current monitor topology.
type Enumerator interface {
	Enumerate() ([]Descriptor, error)
}

// Direction identifies a monitor edge for adjacency lookups.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "unknown"
	}
}

// Registry caches the monitor topology behind an atomically swapped
// snapshot. Readers never block on a refresh: a stale snapshot stays
// valid until a full replacement has been built.
type Registry struct {
	enum Enumerator

	snapshot atomic.Pointer[[]Descriptor]
	stale    atomic.Bool

	refreshMu sync.Mutex
}

// NewRegistry creates a registry backed by the given enumerator. The first
// access triggers an enumeration.
func NewRegistry(enum Enumerator) *Registry {
	r := &Registry{enum: enum}
	r.stale.Store(true)
	return r
}

// Invalidate marks the cached topology stale. The next access rebuilds the
// snapshot; concurrent readers keep the previous one in the meantime.
func (r *Registry) Invalidate() {
	r.stale.Store(true)
}

// All returns the current monitor snapshot. The returned slice must not be
// mutated by callers.
func (r *Registry) All() ([]Descriptor, error) {
	if err := r.refreshIfStale(); err != nil {
		// Degrade to the last good snapshot when re-enumeration fails.
		if snap := r.snapshot.Load(); snap != nil {
			return *snap, err
		}
		return nil, err
	}
	snap := r.snapshot.Load()
	if snap == nil {
		return nil, fmt.Errorf("monitor registry has no snapshot")
	}
	return *snap, nil
}

// Resolve returns the monitor whose bounds overlap the window rectangle
// the most. Ties prefer the primary monitor, then the lowest StableID.
func (r *Registry) Resolve(windowBounds geometry.Rect) (Descriptor, error) {
	all, err := r.All()
	if err != nil && len(all) == 0 {
		return Descriptor{}, err
	}
	if len(all) == 0 {
		return Descriptor{}, fmt.Errorf("no monitors available")
	}

	best := all[0]
	bestOverlap := -1.0
	for _, mon := range all {
		overlap := geometry.OverlapArea(windowBounds, mon.Bounds)
		switch {
		case overlap > bestOverlap:
			best = mon
			bestOverlap = overlap
		case overlap == bestOverlap && betterTieBreak(mon, best):
			best = mon
		}
	}
	return best, nil
}

// AdjacentTo returns the monitor sharing the given edge of mon, if any.
// Among candidates it picks the one with the greatest perpendicular span
// overlap.
func (r *Registry) AdjacentTo(mon Descriptor, dir Direction) (Descriptor, bool) {
	all, err := r.All()
	if err != nil && len(all) == 0 {
		return Descriptor{}, false
	}

	var best Descriptor
	bestSpan := 0.0
	found := false
	for _, cand := range all {
		if cand.StableID == mon.StableID {
			continue
		}
		span, ok := edgeSpan(mon.Bounds, cand.Bounds, dir)
		if ok && span > bestSpan {
			best = cand
			bestSpan = span
			found = true
		}
	}
	return best, found
}

func (r *Registry) refreshIfStale() error {
	if !r.stale.Load() && r.snapshot.Load() != nil {
		return nil
	}
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	if !r.stale.Load() && r.snapshot.Load() != nil {
		return nil
	}

	descs, err := r.enum.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerate monitors: %w", err)
	}
	if err := validateSet(descs); err != nil {
		return err
	}
	snap := make([]Descriptor, len(descs))
	copy(snap, descs)
	r.snapshot.Store(&snap)
	r.stale.Store(false)
	return nil
}

func validateSet(descs []Descriptor) error {
	primaries := 0
	for _, d := range descs {
		if d.Bounds.Empty() {
			return fmt.Errorf("monitor %s has empty bounds", d.StableID)
		}
		if d.Primary {
			primaries++
		}
	}
	if len(descs) > 0 && primaries != 1 {
		return fmt.Errorf("expected exactly one primary monitor, found %d", primaries)
	}
	return nil
}

func betterTieBreak(a, b Descriptor) bool {
	if a.Primary != b.Primary {
		return a.Primary
	}
	return a.StableID < b.StableID
}

// edgeSpan reports whether cand touches mon's dir edge and returns the
// length of the shared perpendicular span.
func edgeSpan(mon, cand geometry.Rect, dir Direction) (float64, bool) {
	switch dir {
	case DirLeft:
		if cand.Right() != mon.X {
			return 0, false
		}
		return overlap1D(mon.Y, mon.Bottom(), cand.Y, cand.Bottom())
	case DirRight:
		if cand.X != mon.Right() {
			return 0, false
		}
		return overlap1D(mon.Y, mon.Bottom(), cand.Y, cand.Bottom())
	case DirUp:
		if cand.Bottom() != mon.Y {
			return 0, false
		}
		return overlap1D(mon.X, mon.Right(), cand.X, cand.Right())
	case DirDown:
		if cand.Y != mon.Bottom() {
			return 0, false
		}
		return overlap1D(mon.X, mon.Right(), cand.X, cand.Right())
	}
	return 0, false
}

func overlap1D(a1, a2, b1, b2 float64) (float64, bool) {
	lo := a1
	if b1 > lo {
		lo = b1
	}
	hi := a2
	if b2 < hi {
		hi = b2
	}
	if hi <= lo {
		return 0, false
	}
	return hi - lo, true
}
