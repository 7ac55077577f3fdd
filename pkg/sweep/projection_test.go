package sweep

import (
	"testing"
)

func TestProject_Corners(t *testing.T) {
	vp := Viewport{Width: 360, Height: 240, Padding: 24}
	pts := []Waypoint{
		{X: 0, Y: 0, Z: 3},
		{X: 40, Y: 0, Z: 3},
		{X: 40, Y: 25, Z: 5},
		{X: 0, Y: 25, Z: 5},
	}

	got := Project(pts, vp, 40, 25)
	expected := []ScreenPoint{
		{X: 24, Y: 216},
		{X: 336, Y: 216},
		{X: 336, Y: 24},
		{X: 24, Y: 24},
	}

	if len(got) != len(expected) {
		t.Fatalf("expected %d points, got %d", len(expected), len(got))
	}
	for i := range expected {
		if !floatEqual(got[i].X, expected[i].X, 1e-9) || !floatEqual(got[i].Y, expected[i].Y, 1e-9) {
			t.Errorf("point %d: expected %+v, got %+v", i, expected[i], got[i])
		}
	}
}

func TestProject_IgnoresAltitude(t *testing.T) {
	vp := DefaultViewport()
	low := Project([]Waypoint{{X: 5, Y: 5, Z: 1}}, vp, 10, 10)
	high := Project([]Waypoint{{X: 5, Y: 5, Z: 100}}, vp, 10, 10)

	if low[0] != high[0] {
		t.Errorf("altitude must not affect the projection: %+v vs %+v", low[0], high[0])
	}
}

func TestProject_DegenerateDomain(t *testing.T) {
	vp := Viewport{Width: 100, Height: 100, Padding: 10}
	got := Project([]Waypoint{{X: 0.5, Y: 0.5}}, vp, 0, 0.25)

	// Both extents are floored at 1.
	if !floatEqual(got[0].X, 50, 1e-9) || !floatEqual(got[0].Y, 50, 1e-9) {
		t.Errorf("expected (50, 50), got %+v", got[0])
	}
}

func TestProject_Empty(t *testing.T) {
	got := Project(nil, DefaultViewport(), 10, 10)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil polyline, got %v", got)
	}
	if SVGPath(got) != "" {
		t.Errorf("expected empty path, got %q", SVGPath(got))
	}
}

func TestProject_PreservesOrder(t *testing.T) {
	fp := Plan("order", DefaultParams())
	got := fp.Project(DefaultViewport())

	if len(got) != len(fp.Waypoints) {
		t.Fatalf("expected %d points, got %d", len(fp.Waypoints), len(got))
	}
	// The first sweep runs left to right at the bottom of the canvas.
	if got[0].X >= got[1].X || got[0].Y != got[1].Y {
		t.Errorf("unexpected first sweep %+v -> %+v", got[0], got[1])
	}
	// The last row is drawn at the top edge.
	if !floatEqual(got[len(got)-1].Y, 24, 1e-9) {
		t.Errorf("expected last row at the top padding, got %v", got[len(got)-1].Y)
	}
}

func TestSVGPath(t *testing.T) {
	tests := []struct {
		name     string
		points   []ScreenPoint
		expected string
	}{
		{"single point", []ScreenPoint{{X: 24, Y: 216}}, "M 24,216"},
		{"polyline", []ScreenPoint{{X: 24, Y: 216}, {X: 336, Y: 216}, {X: 336, Y: 198.72}}, "M 24,216 L 336,216 L 336,198.72"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SVGPath(tt.points); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
