package placement

import (
	"errors"
	"math"

	"github.com/skitterwm/skitter/internal/geometry"
)

// ErrUnsafeTarget is returned when a proposed target cannot be made
// safe: degenerate dimensions, non-finite coordinates, or an area too
// small to hold the window.
var ErrUnsafeTarget = errors.New("placement: unsafe move target")

// Clamp confines the target to lie fully within the monitor area,
// inset by edgeBuffer from every boundary. The window keeps its size;
// only position is adjusted. The buffer shrinks to zero when the area
// is too tight to honor it.
func Clamp(target geometry.Rect, area geometry.Rect, edgeBuffer float64) (geometry.Rect, error) {
	if target.Width <= 0 || target.Height <= 0 {
		return geometry.Rect{}, ErrUnsafeTarget
	}
	if !finiteRect(target) || !finiteRect(area) {
		return geometry.Rect{}, ErrUnsafeTarget
	}
	if target.Width > area.Width || target.Height > area.Height {
		return geometry.Rect{}, ErrUnsafeTarget
	}

	if edgeBuffer < 0 {
		edgeBuffer = 0
	}
	bufX := math.Min(edgeBuffer, (area.Width-target.Width)/2)
	bufY := math.Min(edgeBuffer, (area.Height-target.Height)/2)

	out := target
	out.X = clampAxis(out.X, area.X+bufX, area.Right()-out.Width-bufX)
	out.Y = clampAxis(out.Y, area.Y+bufY, area.Bottom()-out.Height-bufY)
	return out, nil
}

func finiteRect(r geometry.Rect) bool {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
