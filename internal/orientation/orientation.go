// Package orientation routes images by aspect: portrait sources are widened,
// landscape sources are cropped and square sources are left alone.
package orientation

import (
	"image"
)

// Orientation is the routing class of an image.
type Orientation int

const (
	Square Orientation = iota
	Portrait
	Landscape
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	default:
		return "square"
	}
}

// Classify compares width and height exactly; there is no tolerance band.
func Classify(width, height int) Orientation {
	switch {
	case height > width:
		return Portrait
	case width > height:
		return Landscape
	default:
		return Square
	}
}

// ClassifyImage classifies img by its bounds.
func ClassifyImage(img image.Image) Orientation {
	b := img.Bounds()
	return Classify(b.Dx(), b.Dy())
}
