package retouch

import (
	"image"

	"github.com/MeKo-Tech/widen/internal/geometry"
	"github.com/MeKo-Tech/widen/internal/utils"
	"github.com/disintegration/imaging"
)

// WatermarkOptions describes the bottom-left region that gets blurred.
type WatermarkOptions struct {
	WidthRatio  float64
	HeightRatio float64
	BlurRadius  float64
}

// DefaultWatermarkOptions returns the ratios used for the stock watermark
// stamped into the bottom-left corner of portrait sources.
func DefaultWatermarkOptions() WatermarkOptions {
	return WatermarkOptions{
		WidthRatio:  0.23,
		HeightRatio: 0.04,
		BlurRadius:  20,
	}
}

// WatermarkRegion returns the blurred region for an image of the given size,
// relative to the image origin.
func WatermarkRegion(width, height int, opts WatermarkOptions) image.Rectangle {
	w := geometry.Clamp(geometry.Round(float64(width)*opts.WidthRatio), 0, width)
	h := geometry.Clamp(geometry.Round(float64(height)*opts.HeightRatio), 0, height)
	return image.Rect(0, height-h, w, height)
}

// RemoveWatermark blurs the watermark region and pastes it back in place.
// The returned rectangle is the region that was blurred; it is empty when
// the image is too small to have one, in which case img is returned as is.
func RemoveWatermark(img image.Image, opts WatermarkOptions) (image.Image, image.Rectangle) {
	width, height := utils.Dimensions(img)
	region := WatermarkRegion(width, height, opts)
	if region.Empty() {
		return img, region
	}

	patch := utils.CropImageRect(img, region)
	if opts.BlurRadius > 0 {
		patch = imaging.Blur(patch, opts.BlurRadius)
	}
	return utils.PasteAt(utils.ToNRGBA(img), patch, region.Min), region
}
