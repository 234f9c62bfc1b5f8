package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// ImageSize represents common image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common test image sizes.
	PortraitSize  = ImageSize{1000, 1800}
	LandscapeSize = ImageSize{4000, 3000}
	SquareSize    = ImageSize{600, 600}
	UltraWideSize = ImageSize{5000, 2000}
)

var (
	Paper = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Ink   = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	Skin  = color.NRGBA{R: 224, G: 172, B: 140, A: 255}
)

// CreateTestImage creates a uniform image with the specified dimensions and color.
func CreateTestImage(width, height int, backgroundColor color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)
	return img
}

// CreateBandedImage creates a paper-colored image whose rows [top, bottom)
// hold a textured band of content, the layout of a scanned portrait with
// blank margins above and below.
func CreateBandedImage(width, height, top, bottom int) *image.NRGBA {
	img := CreateTestImage(width, height, Paper)
	for y := max(0, top); y < min(height, bottom); y++ {
		for x := range width {
			v := uint8(40 + (x/8+y/8)%2*60)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v / 2, B: 90, A: 255})
		}
	}
	return img
}

// CreateGradientImage creates a horizontal gradient so that resampled
// strips and crops can be told apart by their colors.
func CreateGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			v := uint8(x * 255 / max(1, width-1))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: 255 - v, B: uint8(y % 256), A: 255})
		}
	}
	return img
}

// CreateFaceScene draws a dark hair cap above a skin-colored face box on a
// light background. Hair covers rows [0, hairBottom) over the face columns
// widened by half a face on each side.
func CreateFaceScene(width, height int, face image.Rectangle, hairBottom int) *image.NRGBA {
	img := CreateTestImage(width, height, Paper)
	pad := face.Dx() / 2
	hair := image.Rect(face.Min.X-pad, 0, face.Max.X+pad, hairBottom).Intersect(img.Bounds())
	draw.Draw(img, hair, &image.Uniform{Ink}, image.Point{}, draw.Src)
	draw.Draw(img, face.Intersect(img.Bounds()), &image.Uniform{Skin}, image.Point{}, draw.Src)
	return img
}

// SaveImage saves an image to the specified path, as JPEG when the extension
// asks for it and PNG otherwise.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	dir := filepath.Dir(path)
	require.NoError(t, os.MkdirAll(dir, 0o750), "Failed to create directory %s", dir)

	file, err := os.Create(path) //nolint:gosec // G304: Test file creation with controlled path
	require.NoError(t, err, "Failed to create file %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(file, img)
	}
	require.NoError(t, err, "Failed to encode image %s", path)
}

// LoadImage loads an image from the specified path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	file, err := os.Open(path) //nolint:gosec // G304: Test file reading with controlled path
	require.NoError(t, err, "Failed to open image file %s", path)
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	require.NoError(t, err, "Failed to decode image")

	return img
}

// CompareImages compares two images and returns true if they are similar.
func CompareImages(img1, img2 image.Image, tolerance float64) bool {
	bounds1 := img1.Bounds()
	bounds2 := img2.Bounds()

	if bounds1.Size() != bounds2.Size() {
		return false
	}

	var totalDiff float64
	var pixelCount float64

	for y := range bounds1.Dy() {
		for x := range bounds1.Dx() {
			r1, g1, b1, a1 := img1.At(bounds1.Min.X+x, bounds1.Min.Y+y).RGBA()
			r2, g2, b2, a2 := img2.At(bounds2.Min.X+x, bounds2.Min.Y+y).RGBA()

			dr := float64(r1) - float64(r2)
			dg := float64(g1) - float64(g2)
			db := float64(b1) - float64(b2)
			da := float64(a1) - float64(a2)

			totalDiff += math.Sqrt(dr*dr + dg*dg + db*db + da*da)
			pixelCount++
		}
	}

	avgDiff := totalDiff / pixelCount
	maxDiff := math.Sqrt(4 * 65535 * 65535)

	return (avgDiff / maxDiff) <= tolerance
}
