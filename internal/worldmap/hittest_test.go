package worldmap

import "testing"

func markerFixtures() []Marker {
	return []Marker{
		{ID: "F01", Position: Point{X: 500, Y: 500}, BaseSize: 50, MinVisualSize: 24},
		{ID: "S01", Position: Point{X: 700, Y: 700}, BaseSize: 60, MinVisualSize: 24},
		{ID: "ES01", Position: Point{X: 300, Y: 300}, BaseSize: 24, CullBelowZoom: 0.8},
	}
}

func TestHitTest_CenterHit(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	cam := Camera{Zoom: 1}
	markers := markerFixtures()

	for _, m := range markers {
		view, _ := proj.WorldToView(m.Position, vp, cam)
		id, ok := proj.HitTest(view, markers, vp, cam)
		if !ok || id != m.ID {
			t.Errorf("pointer at %s center resolved to (%q, %v)", m.ID, id, ok)
		}
	}
}

func TestHitTest_MissResolvesToNothing(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	cam := Camera{Zoom: 1}

	// Far corner of the view, beyond every hit radius.
	if id, ok := proj.HitTest(Point{X: 5, Y: 5}, markerFixtures(), vp, cam); ok {
		t.Fatalf("expected no selection, got %q", id)
	}
}

func TestHitTest_TopmostWins(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	cam := Camera{Zoom: 1}

	// Two markers at the same world position; the later entry is drawn on top.
	markers := []Marker{
		{ID: "bottom", Position: Point{X: 600, Y: 600}, BaseSize: 50},
		{ID: "top", Position: Point{X: 600, Y: 600}, BaseSize: 50},
	}

	view, _ := proj.WorldToView(Point{X: 600, Y: 600}, vp, cam)
	id, ok := proj.HitTest(view, markers, vp, cam)
	if !ok || id != "top" {
		t.Fatalf("overlapping markers resolved to (%q, %v), want top", id, ok)
	}
}

func TestHitTest_CulledMarkersAreNotSelectable(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	cam := Camera{Zoom: 0.6} // below the station cull threshold
	markers := markerFixtures()

	station := markers[2]
	view, _ := proj.WorldToView(station.Position, vp, cam)
	if id, ok := proj.HitTest(view, markers, vp, cam); ok && id == station.ID {
		t.Fatal("culled station must not be selectable")
	}

	// Major buildings remain clickable at the same zoom thanks to the
	// minimum visual size.
	fortress := markers[0]
	view, _ = proj.WorldToView(fortress.Position, vp, cam)
	if id, ok := proj.HitTest(view, markers, vp, cam); !ok || id != fortress.ID {
		t.Fatalf("fortress not selectable when zoomed out: (%q, %v)", id, ok)
	}
}

func TestHitTest_ZeroViewport(t *testing.T) {
	if id, ok := proj.HitTest(Point{}, markerFixtures(), Viewport{}, Camera{Zoom: 1}); ok {
		t.Fatalf("zero viewport must not select, got %q", id)
	}
}

func TestRenderSize_MinimumEnforced(t *testing.T) {
	m := Marker{ID: "F01", BaseSize: 50, MinVisualSize: 24}

	if got := m.RenderSize(0.2); got != 24 {
		t.Errorf("RenderSize at small scale = %v, want floor 24", got)
	}
	if got := m.RenderSize(1); got != 50 {
		t.Errorf("RenderSize at scale 1 = %v, want 50", got)
	}

	station := Marker{ID: "ES01", BaseSize: 24}
	if got := station.RenderSize(0.2); got != 4.8 {
		t.Errorf("station RenderSize = %v, want 4.8 (no floor)", got)
	}
}
