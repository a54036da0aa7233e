package worldmap

import "math"

// The 3D scene expresses zoom as camera field-of-view in degrees.
const (
	MinFOV = 0.5
	MaxFOV = 80.0
)

// wheelFactor converts a raw wheel delta into a base FOV change.
const wheelFactor = 0.05

// ClampFOV bounds a field-of-view to the supported range.
func ClampFOV(fov float64) float64 {
	return math.Max(MinFOV, math.Min(MaxFOV, fov))
}

// WheelFOV applies a scroll delta to the current field-of-view with an
// adaptive step: the narrower the FOV, the smaller the per-tick change, so
// zooming feels linear at extreme zoom levels instead of overshooting.
func WheelFOV(currentFOV, wheelDelta float64) float64 {
	step := wheelDelta * wheelFactor
	switch {
	case currentFOV < 2:
		step *= 0.01
	case currentFOV < 10:
		step *= 0.1
	case currentFOV < 30:
		step *= 0.3
	}
	return ClampFOV(currentFOV + step)
}

// StepFOV nudges the field-of-view by a fixed amount for button zoom.
func StepFOV(currentFOV, delta float64) float64 {
	return ClampFOV(currentFOV + delta)
}
