package proximity

import (
	"math"
	"testing"

	"github.com/skitterwm/skitter/internal/geometry"
)

var uniform = geometry.Scale{X: 1, Y: 1}

func TestNoPushOutsideThreshold(t *testing.T) {
	win := geometry.Rect{X: 100, Y: 100, Width: 200, Height: 100}
	params := Params{ThresholdLogical: 50, PushDistanceLogical: 100}

	// Sweep positions just beyond threshold on every side.
	const eps = 0.001
	points := []geometry.Point{
		{X: 100 - 50 - eps, Y: 150},
		{X: 300 + 50 + eps, Y: 150},
		{X: 200, Y: 100 - 50 - eps},
		{X: 200, Y: 200 + 50 + eps},
		{X: 0, Y: 0},
	}
	for _, p := range points {
		if _, ok, err := Evaluate(p, win, uniform, params); err != nil || ok {
			t.Fatalf("Evaluate(%v) = push=%v err=%v, want no push", p, ok, err)
		}
	}
}

func TestCursorInsideWindowTriggersPush(t *testing.T) {
	win := geometry.Rect{X: 90, Y: 90, Width: 40, Height: 40}
	params := Params{ThresholdLogical: 50, PushDistanceLogical: 100}
	cursor := geometry.Point{X: 100, Y: 100}

	push, ok, err := Evaluate(cursor, win, uniform, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a push for a cursor inside the window")
	}
	if push.Distance != 0 {
		t.Fatalf("distance = %v, want 0 for cursor inside window", push.Distance)
	}
	// Window center is (110, 110): push points down-right, away from cursor.
	if push.DX <= 0 || push.DY <= 0 {
		t.Fatalf("push = (%v, %v), want positive components", push.DX, push.DY)
	}
	if mag := math.Hypot(push.DX, push.DY); math.Abs(mag-100) > 1e-9 {
		t.Fatalf("push magnitude = %v, want 100", mag)
	}
}

func TestPushMagnitudeScalesWithDPI(t *testing.T) {
	win := geometry.Rect{X: 500, Y: 500, Width: 200, Height: 200}
	params := Params{ThresholdLogical: 50, PushDistanceLogical: 100}
	cursor := geometry.Point{X: 480, Y: 600} // left of the window, within threshold

	for _, scale := range []float64{1.0, 1.5, 2.0} {
		s := geometry.Scale{X: scale, Y: scale}
		push, ok, err := Evaluate(cursor, win, s, params)
		if err != nil || !ok {
			t.Fatalf("scale %v: push=%v err=%v", scale, ok, err)
		}
		want := 100 * scale
		if mag := math.Hypot(push.DX, push.DY); math.Abs(mag-want) > 1e-9 {
			t.Fatalf("scale %v: magnitude = %v, want %v", scale, mag, want)
		}
	}
}

func TestThresholdConvertsToPhysicalPixels(t *testing.T) {
	win := geometry.Rect{X: 500, Y: 500, Width: 200, Height: 200}
	params := Params{ThresholdLogical: 50, PushDistanceLogical: 100}

	// 80 physical px away: outside a 50px logical threshold at 1x,
	// inside it at 2x (100 physical px).
	cursor := geometry.Point{X: 420, Y: 600}

	if _, ok, _ := Evaluate(cursor, win, geometry.Scale{X: 1, Y: 1}, params); ok {
		t.Fatalf("expected no push at 1x scale")
	}
	if _, ok, _ := Evaluate(cursor, win, geometry.Scale{X: 2, Y: 2}, params); !ok {
		t.Fatalf("expected push at 2x scale")
	}
}

func TestCornerProducesNormalizedDiagonal(t *testing.T) {
	win := geometry.Rect{X: 100, Y: 100, Width: 100, Height: 100}
	params := Params{ThresholdLogical: 50, PushDistanceLogical: 100}

	// Equidistant from the top and left edges, outside the corner.
	cursor := geometry.Point{X: 90, Y: 90}
	push, ok, err := Evaluate(cursor, win, uniform, params)
	if err != nil || !ok {
		t.Fatalf("push=%v err=%v", ok, err)
	}
	if math.Abs(push.DX-push.DY) > 1e-9 {
		t.Fatalf("corner push = (%v, %v), want equal diagonal components", push.DX, push.DY)
	}
	if mag := math.Hypot(push.DX, push.DY); math.Abs(mag-100) > 1e-9 {
		t.Fatalf("corner push magnitude = %v, want 100", mag)
	}
}

func TestPushPointsAwayFromCursor(t *testing.T) {
	win := geometry.Rect{X: 100, Y: 100, Width: 100, Height: 100}
	params := Params{ThresholdLogical: 50, PushDistanceLogical: 10}

	tests := []struct {
		name   string
		cursor geometry.Point
		wantDX float64
		wantDY float64
	}{
		{"from left", geometry.Point{X: 80, Y: 150}, 10, 0},
		{"from right", geometry.Point{X: 220, Y: 150}, -10, 0},
		{"from above", geometry.Point{X: 150, Y: 80}, 0, 10},
		{"from below", geometry.Point{X: 150, Y: 220}, 0, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			push, ok, err := Evaluate(tt.cursor, win, uniform, params)
			if err != nil || !ok {
				t.Fatalf("push=%v err=%v", ok, err)
			}
			if math.Abs(push.DX-tt.wantDX) > 1e-9 || math.Abs(push.DY-tt.wantDY) > 1e-9 {
				t.Fatalf("push = (%v, %v), want (%v, %v)", push.DX, push.DY, tt.wantDX, tt.wantDY)
			}
		})
	}
}

func TestEvaluateRejectsNonFiniteInput(t *testing.T) {
	win := geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	params := Params{ThresholdLogical: 50, PushDistanceLogical: 100}
	if _, _, err := Evaluate(geometry.Point{X: math.NaN()}, win, uniform, params); err == nil {
		t.Fatalf("expected error for NaN cursor")
	}
}
