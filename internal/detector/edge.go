package detector

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
)

// imagingResizer adapts imaging to smartcrop's resizer interface.
type imagingResizer struct {
	filter imaging.ResampleFilter
}

func (r imagingResizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.filter)
}

// EdgeAnalyzer scores candidate windows by edge density, skin tone and
// saturation and returns the most interesting one.
type EdgeAnalyzer struct {
	analyzer smartcrop.Analyzer
}

// NewEdgeAnalyzer creates an analyzer that downsamples with Lanczos.
func NewEdgeAnalyzer() *EdgeAnalyzer {
	return &EdgeAnalyzer{
		analyzer: smartcrop.NewAnalyzer(imagingResizer{filter: imaging.Lanczos}),
	}
}

// Name returns the analyzer name used in logs.
func (e *EdgeAnalyzer) Name() string { return "smartcrop" }

// BestWindow returns the detection for the most interesting window with
// the aspect ratio width:height, relative to the image origin.
func (e *EdgeAnalyzer) BestWindow(img image.Image, width, height int) (Detection, error) {
	if width <= 0 || height <= 0 {
		return Detection{}, fmt.Errorf("invalid window %dx%d", width, height)
	}
	crop, err := e.analyzer.FindBestCrop(img, width, height)
	if err != nil {
		return Detection{}, fmt.Errorf("smartcrop: %w", err)
	}
	crop = crop.Intersect(img.Bounds()).Sub(img.Bounds().Min)
	if crop.Empty() {
		return Detection{Kind: KindNone}, nil
	}
	return Detection{Kind: KindEdge, Box: crop}, nil
}
