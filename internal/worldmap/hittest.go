package worldmap

import "math"

// Marker is a selectable map entity as the hit-tester sees it: a world
// position plus the sizing rules of its building type.
type Marker struct {
	ID       string
	Position Point
	// BaseSize is the rendered pixel size at scale 1.
	BaseSize float64
	// MinVisualSize, when positive, is the pixel floor enforced for the
	// marker when zoomed far out (major building types stay clickable).
	MinVisualSize float64
	// CullBelowZoom, when positive, hides the marker at or below that zoom
	// (small stations disappear when zoomed out).
	CullBelowZoom float64
}

// Visible reports whether the marker is drawn at the given zoom.
func (m Marker) Visible(zoom float64) bool {
	if m.CullBelowZoom <= 0 {
		return true
	}
	return zoom > m.CullBelowZoom
}

// RenderSize is the marker's on-screen pixel size at the given scale.
func (m Marker) RenderSize(scale float64) float64 {
	size := m.BaseSize * scale
	if m.MinVisualSize > 0 {
		return math.Max(m.MinVisualSize, size)
	}
	return size
}

// HitTest resolves a pointer position in view space to a marker id.
//
// The pointer is converted to world space, then candidates are walked from
// topmost (last drawn) to bottommost so visually overlapping markers resolve
// to the one on top. A marker matches when the Euclidean world-space distance
// to its position is under its hit radius, which is half the rendered pixel
// size divided by the current scale. Returns ok=false when nothing is within
// any radius or the viewport has no usable area.
func (p Projection) HitTest(view Point, markers []Marker, vp Viewport, cam Camera) (string, bool) {
	world, ok := p.ViewToWorld(view, vp, cam)
	if !ok {
		return "", false
	}
	scale := p.Scale(vp, cam.Zoom)
	if scale == 0 {
		return "", false
	}

	for i := len(markers) - 1; i >= 0; i-- {
		m := markers[i]
		if !m.Visible(cam.Zoom) {
			continue
		}

		dist := math.Hypot(m.Position.X-world.X, m.Position.Y-world.Y)
		hitRadius := m.RenderSize(scale) / 2 / scale

		if dist < hitRadius {
			return m.ID, true
		}
	}
	return "", false
}
