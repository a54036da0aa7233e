// Package worldmap holds the coordinate math shared by every map rendering
// back end: world/view projection, zoom handling for both the 2D canvas and
// the 3D camera, and marker hit-testing.
//
// World space is a fixed square grid (1200x1200 by default) with a defined
// center. World Y grows upward while view Y grows downward, so the vertical
// axis is flipped in both directions of the transform.
package worldmap

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Camera is the 2D view state: zoom factor plus pan offset in view pixels.
type Camera struct {
	Zoom float64 `json:"zoom"`
	Pan  Point   `json:"pan"`
}

const (
	MinZoom  = 0.5
	MaxZoom  = 2.0
	ZoomStep = 0.1
)

// Projection is the transform between the fixed world grid and view space.
type Projection struct {
	WorldSize float64
	Center    Point
}

func NewProjection(worldSize float64, center Point) Projection {
	return Projection{WorldSize: worldSize, Center: center}
}

// Scale returns view pixels per world unit. A zero-size viewport (not yet
// laid out) yields 0 rather than dividing by zero downstream.
func (p Projection) Scale(vp Viewport, zoom float64) float64 {
	side := math.Min(vp.Width, vp.Height)
	if side <= 0 || p.WorldSize <= 0 {
		return 0
	}
	return side / p.WorldSize * zoom
}

// WorldToView projects a world coordinate into view space. The returned scale
// is the same value Scale reports for the viewport and zoom.
func (p Projection) WorldToView(world Point, vp Viewport, cam Camera) (Point, float64) {
	scale := p.Scale(vp, cam.Zoom)
	centerX := vp.Width/2 + cam.Pan.X
	centerY := vp.Height/2 + cam.Pan.Y

	return Point{
		X: centerX + (world.X-p.Center.X)*scale,
		Y: centerY - (world.Y-p.Center.Y)*scale, // flip Y
	}, scale
}

// ViewToWorld is the exact inverse of WorldToView. ok is false when the
// viewport has no usable area.
func (p Projection) ViewToWorld(view Point, vp Viewport, cam Camera) (Point, bool) {
	scale := p.Scale(vp, cam.Zoom)
	if scale == 0 {
		return Point{}, false
	}

	centerX := vp.Width/2 + cam.Pan.X
	centerY := vp.Height/2 + cam.Pan.Y

	return Point{
		X: (view.X-centerX)/scale + p.Center.X,
		Y: p.Center.Y - (view.Y-centerY)/scale, // flip Y
	}, true
}

// ClampZoom bounds a 2D zoom factor to the supported range.
func ClampZoom(zoom float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}
