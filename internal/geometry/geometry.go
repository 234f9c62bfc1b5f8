// Package geometry holds the integer rectangle arithmetic shared by the
// reframing stages: rounding, clamping and the 16:9 window height.
package geometry

import (
	"errors"
	"image"
	"math"
)

// ErrDegenerateGeometry marks a layout that cannot produce a valid output,
// for example a zero-area source or a resize that misses the canvas height.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Canvas dimensions of the 4K UHD output.
const (
	CanvasWidth  = 3840
	CanvasHeight = 2160
)

// Round rounds half away from zero and converts to int.
func Round(f float64) int {
	return int(math.Round(f))
}

// Clamp limits v to [lo, hi]. When hi < lo the result is lo.
func Clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// TargetHeight returns the 16:9 window height for the given width.
func TargetHeight(width int) int {
	return Round(float64(width) * 9 / 16)
}

// ClampAnchor clamps a window top so that a window of the given height stays
// inside a frame of frameHeight rows.
func ClampAnchor(y, frameHeight, window int) int {
	return Clamp(y, 0, max(0, frameHeight-window))
}

// Inside reports whether r lies completely inside bounds.
func Inside(r, bounds image.Rectangle) bool {
	return r.Min.X >= bounds.Min.X && r.Min.Y >= bounds.Min.Y &&
		r.Max.X <= bounds.Max.X && r.Max.Y <= bounds.Max.Y
}

// Area returns the pixel area of r, zero for empty rectangles.
func Area(r image.Rectangle) int {
	if r.Empty() {
		return 0
	}
	return r.Dx() * r.Dy()
}

// IoU computes intersection over union of two rectangles.
func IoU(a, b image.Rectangle) float64 {
	inter := Area(a.Intersect(b))
	if inter == 0 {
		return 0
	}
	union := Area(a) + Area(b) - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
