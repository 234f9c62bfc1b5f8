package utils

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// CropImageRect crops an image to the given rectangle, expressed relative to
// the image origin. The rectangle is intersected with the image first.
func CropImageRect(img image.Image, rect image.Rectangle) *image.NRGBA {
	b := img.Bounds()
	rect = rect.Add(b.Min).Intersect(b)
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}

// PasteAt pastes src into a copy of dst with its top-left corner at pos.
func PasteAt(dst, src image.Image, pos image.Point) *image.NRGBA {
	return imaging.Paste(dst, src, pos)
}

// Dimensions returns the width and height of img.
func Dimensions(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// DrawRect draws an axis-aligned rectangle outline into dst.
func DrawRect(dst *image.NRGBA, rect image.Rectangle, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	for t := range thickness {
		FillRect(dst, image.Rect(rect.Min.X, rect.Min.Y+t, rect.Max.X, rect.Min.Y+t+1), col)
		FillRect(dst, image.Rect(rect.Min.X, rect.Max.Y-1-t, rect.Max.X, rect.Max.Y-t), col)
		FillRect(dst, image.Rect(rect.Min.X+t, rect.Min.Y, rect.Min.X+t+1, rect.Max.Y), col)
		FillRect(dst, image.Rect(rect.Max.X-1-t, rect.Min.Y, rect.Max.X-t, rect.Max.Y), col)
	}
}
