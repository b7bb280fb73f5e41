package placement

import (
	"errors"
	"math"
	"testing"

	"github.com/skitterwm/skitter/internal/geometry"
)

func TestClampKeepsInBoundsTargetUnchanged(t *testing.T) {
	area := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	target := geometry.Rect{X: 500, Y: 300, Width: 400, Height: 300}

	got, err := Clamp(target, area, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != target {
		t.Fatalf("Clamp altered an in-bounds target: %+v", got)
	}
}

func TestClampPullsWindowInsideWithBuffer(t *testing.T) {
	area := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	tests := []struct {
		name   string
		target geometry.Rect
		wantX  float64
		wantY  float64
	}{
		{"past left", geometry.Rect{X: -100, Y: 300, Width: 400, Height: 300}, 10, 300},
		{"past right", geometry.Rect{X: 1800, Y: 300, Width: 400, Height: 300}, 1920 - 400 - 10, 300},
		{"past top", geometry.Rect{X: 500, Y: -50, Width: 400, Height: 300}, 500, 10},
		{"past bottom", geometry.Rect{X: 500, Y: 1000, Width: 400, Height: 300}, 500, 1080 - 300 - 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clamp(tt.target, area, 10)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.X != tt.wantX || got.Y != tt.wantY {
				t.Fatalf("clamped to (%v, %v), want (%v, %v)", got.X, got.Y, tt.wantX, tt.wantY)
			}
			if got.Width != tt.target.Width || got.Height != tt.target.Height {
				t.Fatalf("Clamp resized the window: %+v", got)
			}
		})
	}
}

func TestClampRejectsDegenerateTargets(t *testing.T) {
	area := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	bad := []geometry.Rect{
		{X: 0, Y: 0, Width: 0, Height: 100},
		{X: 0, Y: 0, Width: 100, Height: -5},
		{X: math.NaN(), Y: 0, Width: 100, Height: 100},
		{X: 0, Y: math.Inf(1), Width: 100, Height: 100},
		{X: 0, Y: 0, Width: 3000, Height: 100}, // wider than the area
	}
	for _, target := range bad {
		if _, err := Clamp(target, area, 10); !errors.Is(err, ErrUnsafeTarget) {
			t.Fatalf("Clamp(%+v) err = %v, want ErrUnsafeTarget", target, err)
		}
	}
}

func TestClampShrinksBufferWhenAreaIsTight(t *testing.T) {
	// Window nearly fills the area; a 50px buffer cannot be honored.
	area := geometry.Rect{X: 0, Y: 0, Width: 500, Height: 500}
	target := geometry.Rect{X: -20, Y: -20, Width: 490, Height: 490}

	got, err := Clamp(target, area, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.X != 5 || got.Y != 5 {
		t.Fatalf("clamped to (%v, %v), want (5, 5) with reduced buffer", got.X, got.Y)
	}
	if got.Right() > area.Right() || got.Bottom() > area.Bottom() {
		t.Fatalf("clamped rect leaves the area: %+v", got)
	}
}
