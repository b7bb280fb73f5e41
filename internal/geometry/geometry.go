package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned when a geometry function receives a
// non-finite coordinate or scale factor.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Point is a position in either physical or logical pixel space.
type Point struct {
	X float64
	Y float64
}

// Rect represents a window or monitor rectangle. Coordinates are physical
// pixels unless a function says otherwise.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Scale holds a monitor's DPI scale factors relative to the 96-DPI logical
// space. 1.0 means physical and logical pixels coincide.
type Scale struct {
	X float64
	Y float64
}

// Right returns the exclusive right edge coordinate.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the exclusive bottom edge coordinate.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Intersect returns the overlapping region of a and b, or a zero Rect when
// they do not overlap.
func Intersect(a, b Rect) Rect {
	x1 := math.Max(a.X, b.X)
	y1 := math.Max(a.Y, b.Y)
	x2 := math.Min(a.Right(), b.Right())
	y2 := math.Min(a.Bottom(), b.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// OverlapArea returns the area shared by a and b.
func OverlapArea(a, b Rect) float64 {
	i := Intersect(a, b)
	return i.Width * i.Height
}

// Distance returns the Euclidean distance from p to the nearest edge or
// corner of r, or 0 when p lies inside r.
func Distance(p Point, r Rect) (float64, error) {
	if err := CheckPoint(p); err != nil {
		return 0, err
	}
	if err := CheckRect(r); err != nil {
		return 0, err
	}
	dx := math.Max(math.Max(r.X-p.X, 0), p.X-r.Right())
	dy := math.Max(math.Max(r.Y-p.Y, 0), p.Y-r.Bottom())
	return math.Hypot(dx, dy), nil
}

// ToLogicalPoint converts a physical-pixel point into the monitor's logical
// space by dividing out the DPI scale.
func ToLogicalPoint(p Point, s Scale) (Point, error) {
	if err := checkScale(s); err != nil {
		return Point{}, err
	}
	if err := CheckPoint(p); err != nil {
		return Point{}, err
	}
	return Point{X: p.X / s.X, Y: p.Y / s.Y}, nil
}

// ToPhysicalPoint converts a logical point into physical pixels.
func ToPhysicalPoint(p Point, s Scale) (Point, error) {
	if err := checkScale(s); err != nil {
		return Point{}, err
	}
	if err := CheckPoint(p); err != nil {
		return Point{}, err
	}
	return Point{X: p.X * s.X, Y: p.Y * s.Y}, nil
}

// ToLogicalRect converts a physical rectangle into logical space.
func ToLogicalRect(r Rect, s Scale) (Rect, error) {
	if err := checkScale(s); err != nil {
		return Rect{}, err
	}
	if err := CheckRect(r); err != nil {
		return Rect{}, err
	}
	return Rect{X: r.X / s.X, Y: r.Y / s.Y, Width: r.Width / s.X, Height: r.Height / s.Y}, nil
}

// ToPhysicalRect converts a logical rectangle into physical pixels.
func ToPhysicalRect(r Rect, s Scale) (Rect, error) {
	if err := checkScale(s); err != nil {
		return Rect{}, err
	}
	if err := CheckRect(r); err != nil {
		return Rect{}, err
	}
	return Rect{X: r.X * s.X, Y: r.Y * s.Y, Width: r.Width * s.X, Height: r.Height * s.Y}, nil
}

// Lerp linearly interpolates between rectangles a and b. t is clamped to
// [0, 1].
func Lerp(a, b Rect, t float64) Rect {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Rect{
		X:      a.X + (b.X-a.X)*t,
		Y:      a.Y + (b.Y-a.Y)*t,
		Width:  a.Width + (b.Width-a.Width)*t,
		Height: a.Height + (b.Height-a.Height)*t,
	}
}

// CheckPoint validates that p has finite coordinates.
func CheckPoint(p Point) error {
	if !finite(p.X) || !finite(p.Y) {
		return fmt.Errorf("%w: point (%v, %v)", ErrInvalidGeometry, p.X, p.Y)
	}
	return nil
}

// CheckRect validates that r has finite coordinates and dimensions.
func CheckRect(r Rect) error {
	if !finite(r.X) || !finite(r.Y) || !finite(r.Width) || !finite(r.Height) {
		return fmt.Errorf("%w: rect (%v, %v, %v, %v)", ErrInvalidGeometry, r.X, r.Y, r.Width, r.Height)
	}
	return nil
}

func checkScale(s Scale) error {
	if !finite(s.X) || !finite(s.Y) || s.X <= 0 || s.Y <= 0 {
		return fmt.Errorf("%w: scale (%v, %v)", ErrInvalidGeometry, s.X, s.Y)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
