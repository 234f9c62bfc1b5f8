package retouch

import (
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/widen/internal/geometry"
	"github.com/MeKo-Tech/widen/internal/testutil"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerboard(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}
	return img
}

func TestWatermarkRegion(t *testing.T) {
	r := WatermarkRegion(1000, 2000, DefaultWatermarkOptions())
	assert.Equal(t, image.Rect(0, 1920, 230, 2000), r)

	assert.True(t, WatermarkRegion(1, 1, DefaultWatermarkOptions()).Empty())
}

func TestWatermarkRegion_Property(t *testing.T) {
	properties := gopter.NewProperties(nil)
	opts := DefaultWatermarkOptions()

	properties.Property("region sits at the bottom-left with rounded ratios", prop.ForAll(
		func(w, h int) bool {
			r := WatermarkRegion(w, h, opts)
			return r.Min.X == 0 &&
				r.Max.Y == h &&
				r.Dx() == geometry.Round(0.23*float64(w)) &&
				r.Dy() == geometry.Round(0.04*float64(h))
		},
		gen.IntRange(1, 10000),
		gen.IntRange(1, 10000),
	))

	properties.TestingRun(t)
}

func TestRemoveWatermark(t *testing.T) {
	src := checkerboard(200, 400)

	out, region := RemoveWatermark(src, DefaultWatermarkOptions())
	require.Equal(t, image.Rect(0, 384, 46, 400), region)
	assert.Equal(t, src.Bounds(), out.Bounds())

	r, _, _, _ := out.At(23, 392).RGBA()
	assert.InDelta(t, 0x7fff, float64(r), 0x2000, "inside the region the checkerboard is blurred to gray")

	assert.Equal(t, src.At(100, 100), out.At(100, 100), "outside the region pixels are untouched")
	assert.Equal(t, src.At(100, 395), out.At(100, 395))
	assert.Equal(t, src.At(23, 383), out.At(23, 383))

	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, src.NRGBAAt(0, 0), "source is not modified")
}

func TestRemoveWatermark_TinyImage(t *testing.T) {
	src := testutil.CreateTestImage(1, 1, color.White)
	out, region := RemoveWatermark(src, DefaultWatermarkOptions())
	assert.True(t, region.Empty())
	assert.Same(t, src, out)
}
