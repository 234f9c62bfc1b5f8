package utils

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ImageConstraints defines the dimensions an input image must satisfy.
type ImageConstraints struct {
	MinWidth  int
	MinHeight int
}

// DefaultImageConstraints returns the smallest input the reframing stages can handle.
// The hair-top scan needs a few dozen rows above a face and the edge strip
// needs at least one column per side.
func DefaultImageConstraints() ImageConstraints {
	return ImageConstraints{
		MinWidth:  2,
		MinHeight: 2,
	}
}

// ToNRGBA returns img as an *image.NRGBA anchored at the origin, converting only when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// Luma returns the Rec. 601 luminance of an 8-bit RGB triple in [0, 255].
func Luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// LumaAt returns the luminance of the pixel at (x, y) of an NRGBA image.
func LumaAt(img *image.NRGBA, x, y int) float64 {
	i := img.PixOffset(x, y)
	return Luma(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
}

// FillRect paints rect of dst with a solid color.
func FillRect(dst *image.NRGBA, rect image.Rectangle, col color.Color) {
	c := color.NRGBAModel.Convert(col).(color.NRGBA)
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := dst.PixOffset(x, y)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
}
