package support

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/widen/internal/utils"
	"github.com/cucumber/godog"
)

// smallConfig keeps conversions fast and independent of model files.
const smallConfig = `canvas:
  width: 384
  height: 216
compositor:
  blur_radius: 5
cascade:
  strategies: [edge, center]
detectors:
  face_backend: none
  body_backend: none
batch:
  progress: none
`

func (testCtx *TestContext) aSmallCanvasConfiguration() error {
	return os.WriteFile(testCtx.path("widen.yaml"), []byte(smallConfig), 0o644)
}

func (testCtx *TestContext) aConfigFileWithContent(name string, content *godog.DocString) error {
	path := testCtx.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content.Content), 0o644)
}

// anImage writes a synthetic image of the requested shape.
func (testCtx *TestContext) anImage(shape, name string) error {
	var img *image.NRGBA
	switch shape {
	case "portrait":
		img = bandedImage(100, 200, 20, 180)
	case "landscape":
		img = gradientImage(400, 300)
	case "panorama":
		img = gradientImage(1000, 216)
	case "square":
		img = bandedImage(50, 50, 0, 50)
	default:
		return fmt.Errorf("unknown image shape %q", shape)
	}

	path := testCtx.path(name)
	format := utils.FormatPNG
	if ext := strings.ToLower(filepath.Ext(name)); ext == ".jpg" || ext == ".jpeg" {
		format = utils.FormatJPEG
	}
	return utils.SaveImage(img, path, utils.EncodeOptions{Format: format, Quality: 95})
}

func (testCtx *TestContext) aCorruptImage(name string) error {
	path := testCtx.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("definitely not an image"), 0o644)
}

func (testCtx *TestContext) theFileShouldExist(name string) error {
	if _, err := os.Stat(testCtx.path(name)); err != nil {
		return fmt.Errorf("expected file %s: %w\nOutput: %s", name, err, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldNotExist(name string) error {
	if _, err := os.Stat(testCtx.path(name)); err == nil {
		return fmt.Errorf("file %s should not exist", name)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(name, text string) error {
	data, err := os.ReadFile(testCtx.path(name))
	if err != nil {
		return err
	}
	if !strings.Contains(string(data), text) {
		return fmt.Errorf("file %s does not contain %q\nContent: %s", name, text, data)
	}
	return nil
}

func (testCtx *TestContext) theImageShouldBe(name string, width, height int) error {
	img, _, err := utils.LoadImage(testCtx.path(name))
	if err != nil {
		return err
	}
	w, h := utils.Dimensions(img)
	if w != width || h != height {
		return fmt.Errorf("image %s is %dx%d, want %dx%d", name, w, h, width, height)
	}
	return nil
}

// bandedImage is white with a dark band between rows top and bottom.
func bandedImage(width, height, top, bottom int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		if y >= top && y < bottom {
			c = color.NRGBA{R: 40, G: 60, B: 90, A: 255}
		}
		for x := range width {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func gradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / width), G: uint8(y * 255 / height), B: 128, A: 255})
		}
	}
	return img
}

// RegisterImageSteps registers fixture and output file steps.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a small canvas configuration$`, testCtx.aSmallCanvasConfiguration)
	sc.Step(`^a config file "([^"]*)" with:$`, testCtx.aConfigFileWithContent)
	sc.Step(`^an? (portrait|landscape|panorama|square) image "([^"]*)"$`, testCtx.anImage)
	sc.Step(`^a corrupt image "([^"]*)"$`, testCtx.aCorruptImage)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the image "([^"]*)" should be (\d+)x(\d+)$`, testCtx.theImageShouldBe)
}
