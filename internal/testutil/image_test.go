package testutil

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateTestImage(t *testing.T) {
	img := CreateTestImage(20, 10, color.Black)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
	assert.Equal(t, color.NRGBA{A: 255}, img.NRGBAAt(19, 9))
}

func TestCreateBandedImage(t *testing.T) {
	img := CreateBandedImage(50, 100, 10, 90)
	assert.Equal(t, Paper, img.NRGBAAt(0, 9))
	assert.NotEqual(t, Paper, img.NRGBAAt(0, 10))
	assert.NotEqual(t, Paper, img.NRGBAAt(49, 89))
	assert.Equal(t, Paper, img.NRGBAAt(49, 90))
}

func TestCreateFaceScene(t *testing.T) {
	face := image.Rect(40, 60, 80, 100)
	img := CreateFaceScene(200, 200, face, 40)

	assert.Equal(t, Skin, img.NRGBAAt(60, 80))
	assert.Equal(t, Ink, img.NRGBAAt(60, 20))
	assert.Equal(t, Ink, img.NRGBAAt(25, 20), "hair extends half a face to the left")
	assert.Equal(t, Paper, img.NRGBAAt(60, 50))
	assert.Equal(t, Paper, img.NRGBAAt(150, 20))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	img := CreateGradientImage(32, 16)

	path := filepath.Join(dir, "sub", "gradient.png")
	SaveImage(t, img, path)
	loaded := LoadImage(t, path)
	assert.True(t, CompareImages(img, loaded, 0))

	jpgPath := filepath.Join(dir, "gradient.jpg")
	SaveImage(t, img, jpgPath)
	assert.True(t, CompareImages(img, LoadImage(t, jpgPath), 0.05))
}

func TestCompareImagesSizeMismatch(t *testing.T) {
	assert.False(t, CompareImages(CreateTestImage(2, 2, color.White), CreateTestImage(3, 2, color.White), 1))
}
