package detector

import (
	"image"
	"math"

	"github.com/MeKo-Tech/widen/internal/geometry"
	"github.com/MeKo-Tech/widen/internal/utils"
)

// HairParams tunes the search for the top of the hair above a face.
type HairParams struct {
	// Background luminance is sampled in rows [faceY-BandTop, faceY-BandBottom)
	// and columns [cx-BandHalfWidth, cx+BandHalfWidth].
	BandTop       int
	BandBottom    int
	BandHalfWidth int
	// Scan lines run at cx and cx +/- LineOffset.
	LineOffset int
	ScanDepth  int
	// Threshold is the luminance difference that marks a hair pixel.
	Threshold float64
	// MarginRatio of faceY is left as headroom above the hair line.
	MarginRatio float64
	// FallbackRatio of the face height is used above the face when no hair
	// line is found.
	FallbackRatio float64
}

// DefaultHairParams returns the hair-top search parameters.
func DefaultHairParams() HairParams {
	return HairParams{
		BandTop:       50,
		BandBottom:    20,
		BandHalfWidth: 100,
		LineOffset:    50,
		ScanDepth:     100,
		Threshold:     30,
		MarginRatio:   0.05,
		FallbackRatio: 1.5,
	}
}

// HairTopResult is the outcome of a hair-top search.
type HairTopResult struct {
	// Anchor is the proposed crop top, not yet clamped to the frame.
	Anchor int
	// Found reports whether a hair line was detected; when false Anchor is
	// the face-height fallback.
	Found      bool
	Background float64
	Hits       []int
}

// HairTop estimates where the crop window should start so that hair above
// the face stays in frame. The background luminance just above the face is
// compared against pixels further up three vertical lines; the first pixel
// that differs enough on each line is a hair hit.
func HairTop(img image.Image, face image.Rectangle, p HairParams) HairTopResult {
	src := utils.ToNRGBA(img)
	w, h := utils.Dimensions(src)
	faceY := face.Min.Y
	cx := face.Min.X + face.Dx()/2

	fallback := HairTopResult{
		Anchor: faceY - geometry.Round(p.FallbackRatio*float64(face.Dy())),
	}

	band := image.Rect(cx-p.BandHalfWidth, faceY-p.BandTop, cx+p.BandHalfWidth+1, faceY-p.BandBottom).
		Intersect(image.Rect(0, 0, w, h))
	if band.Empty() {
		return fallback
	}

	var sum float64
	for y := band.Min.Y; y < band.Max.Y; y++ {
		for x := band.Min.X; x < band.Max.X; x++ {
			sum += utils.LumaAt(src, x, y)
		}
	}
	bg := sum / float64(band.Dx()*band.Dy())
	fallback.Background = bg

	stop := max(0, faceY-p.ScanDepth)
	var hits []int
	for _, x := range []int{cx, cx - p.LineOffset, cx + p.LineOffset} {
		if x < 0 || x >= w {
			continue
		}
		for y := min(faceY-1, h-1); y >= stop; y-- {
			if math.Abs(utils.LumaAt(src, x, y)-bg) > p.Threshold {
				hits = append(hits, y)
				break
			}
		}
	}
	if len(hits) == 0 {
		return fallback
	}

	var total float64
	for _, y := range hits {
		total += float64(y)
	}
	top := geometry.Round(total / float64(len(hits)))
	return HairTopResult{
		Anchor:     top - geometry.Round(p.MarginRatio*float64(faceY)),
		Found:      true,
		Background: bg,
		Hits:       hits,
	}
}
