package retouch

import (
	"fmt"
	"image"
	"math"

	"github.com/MeKo-Tech/widen/internal/geometry"
	"github.com/MeKo-Tech/widen/internal/utils"
	"github.com/disintegration/imaging"
)

// ResizeToHeight scales img with Lanczos resampling so that it is exactly
// height rows tall, keeping the aspect ratio.
func ResizeToHeight(img image.Image, height int) (*image.NRGBA, error) {
	w, h := utils.Dimensions(img)
	if w == 0 || h == 0 || height <= 0 {
		return nil, fmt.Errorf("resize %dx%d to height %d: %w", w, h, height, geometry.ErrDegenerateGeometry)
	}
	if h == height {
		return utils.ToNRGBA(img), nil
	}
	newWidth := max(1, geometry.Round(float64(w)*float64(height)/float64(h)))
	return imaging.Resize(img, newWidth, height, imaging.Lanczos), nil
}

// ResizeToWidth scales img to exactly width x height. The aspect-preserving
// height for the requested width must lie within the allowed drift of height
// (see WidthDrift), otherwise the layout upstream was wrong and
// ErrDegenerateGeometry is returned.
func ResizeToWidth(img image.Image, width, height, tolerance int) (*image.NRGBA, error) {
	w, h := utils.Dimensions(img)
	if w == 0 || h == 0 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("resize %dx%d to width %d: %w", w, h, width, geometry.ErrDegenerateGeometry)
	}
	scaled := geometry.Round(float64(h) * float64(width) / float64(w))
	allowed := WidthDrift(w, width, tolerance)
	if diff := scaled - height; diff > allowed || diff < -allowed {
		return nil, fmt.Errorf("resize %dx%d to width %d gives height %d, want %d: %w",
			w, h, width, scaled, height, geometry.ErrDegenerateGeometry)
	}
	if w == width && h == height {
		return utils.ToNRGBA(img), nil
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// WidthDrift is the number of rows a crop of sourceWidth columns may drift
// from the canvas height after scaling to width. The crop height was rounded
// to a whole row, and scaling by width/sourceWidth magnifies that half row.
func WidthDrift(sourceWidth, width, tolerance int) int {
	if sourceWidth <= 0 {
		return tolerance
	}
	return tolerance + int(math.Ceil(0.5*float64(width)/float64(sourceWidth)))
}
