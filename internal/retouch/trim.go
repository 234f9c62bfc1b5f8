package retouch

import (
	"image"
	"math"

	"github.com/MeKo-Tech/widen/internal/utils"
)

const backgroundSample = 10

// TrimBounds are the rows kept by TrimWhitespace, as the half-open range
// [Top, Bottom).
type TrimBounds struct {
	Top    int
	Bottom int
}

// Trimmed reports whether the bounds remove at least one row of an image
// with the given height.
func (b TrimBounds) Trimmed(height int) bool {
	return b.Top > 0 || b.Bottom < height
}

// FuzzThreshold converts a fuzz percentage into a per-channel deviation.
func FuzzThreshold(fuzzPercent float64) float64 {
	return fuzzPercent / 100 * 255
}

// TrimWhitespace removes uniform rows above and below the content. The
// background is the mean channel value of the top-left corner block; a row
// is content when its mean absolute channel deviation from that value
// exceeds the fuzz threshold. Columns are never trimmed.
func TrimWhitespace(img image.Image, fuzzPercent float64) (image.Image, TrimBounds) {
	src := utils.ToNRGBA(img)
	width, height := utils.Dimensions(src)
	full := TrimBounds{Top: 0, Bottom: height}
	if width == 0 || height == 0 {
		return img, full
	}

	bg := cornerBackground(src)
	threshold := FuzzThreshold(fuzzPercent)

	top := -1
	for y := range height {
		if rowDeviation(src, y, bg) > threshold {
			top = y
			break
		}
	}
	if top < 0 {
		return img, full
	}

	bottom := top + 1
	for y := height - 1; y >= top; y-- {
		if rowDeviation(src, y, bg) > threshold {
			bottom = y + 1
			break
		}
	}

	bounds := TrimBounds{Top: top, Bottom: bottom}
	if bottom <= top || !bounds.Trimmed(height) {
		return img, full
	}
	return utils.CropImageRect(src, image.Rect(0, top, width, bottom)), bounds
}

func cornerBackground(img *image.NRGBA) float64 {
	w := min(backgroundSample, img.Bounds().Dx())
	h := min(backgroundSample, img.Bounds().Dy())
	var sum float64
	for y := range h {
		for x := range w {
			i := img.PixOffset(x, y)
			sum += float64(img.Pix[i]) + float64(img.Pix[i+1]) + float64(img.Pix[i+2])
		}
	}
	return sum / float64(w*h*3)
}

func rowDeviation(img *image.NRGBA, y int, bg float64) float64 {
	w := img.Bounds().Dx()
	var sum float64
	for x := range w {
		i := img.PixOffset(x, y)
		sum += math.Abs(float64(img.Pix[i])-bg) +
			math.Abs(float64(img.Pix[i+1])-bg) +
			math.Abs(float64(img.Pix[i+2])-bg)
	}
	return sum / float64(w*3)
}
