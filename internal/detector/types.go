// Package detector finds faces, people and salient regions in images.
//
// Backends are chosen at build time: the default build uses pigo for faces
// and an ONNX person model for bodies; building with the gocv tag switches
// to OpenCV Haar and HOG detectors. Construct backends once through a
// Registry and share it read-only.
package detector

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/MeKo-Tech/widen/internal/geometry"
)

// ErrDetectorUnavailable is returned when a backend failed to initialize or
// is not compiled into the binary.
var ErrDetectorUnavailable = errors.New("detector unavailable")

func unavailable(backend string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", backend, ErrDetectorUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", backend, ErrDetectorUnavailable, cause)
}

// Kind identifies the source of a detection.
type Kind int

const (
	KindNone Kind = iota
	KindFace
	KindBody
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindFace:
		return "face"
	case KindBody:
		return "body"
	case KindEdge:
		return "edge"
	default:
		return "none"
	}
}

// Detection is one located region in source-pixel coordinates.
type Detection struct {
	Kind Kind
	Box  image.Rectangle
}

// FaceDetector locates faces. Results are in the detector's native order.
type FaceDetector interface {
	Name() string
	DetectFaces(img image.Image) ([]image.Rectangle, error)
}

// BodyDetector locates people. Results are in the detector's native order.
type BodyDetector interface {
	Name() string
	DetectBodies(img image.Image) ([]image.Rectangle, error)
}

// Policy chooses one box out of several detections.
type Policy string

const (
	// PolicyFirst keeps the detector's native order.
	PolicyFirst Policy = "first"
	// PolicyTopmost picks the smallest Min.Y, ties by native order.
	PolicyTopmost Policy = "topmost"
	// PolicyLargest picks the largest area, ties by topmost then native order.
	PolicyLargest Policy = "largest"
)

// ParsePolicy validates a selection policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFirst, PolicyTopmost, PolicyLargest:
		return p, nil
	default:
		return "", fmt.Errorf("unknown selection policy %q", s)
	}
}

// Order returns a copy of boxes sorted by the policy. The sort is stable so
// equal keys keep detector order.
func Order(boxes []image.Rectangle, policy Policy) []image.Rectangle {
	out := slices.Clone(boxes)
	switch policy {
	case PolicyTopmost:
		slices.SortStableFunc(out, func(a, b image.Rectangle) int {
			return a.Min.Y - b.Min.Y
		})
	case PolicyLargest:
		slices.SortStableFunc(out, func(a, b image.Rectangle) int {
			if d := geometry.Area(b) - geometry.Area(a); d != 0 {
				return d
			}
			return a.Min.Y - b.Min.Y
		})
	}
	return out
}

// Select returns the box the policy ranks first.
func Select(boxes []image.Rectangle, policy Policy) (image.Rectangle, bool) {
	if len(boxes) == 0 {
		return image.Rectangle{}, false
	}
	return Order(boxes, policy)[0], true
}

// clipBoxes drops empty boxes and clips the rest to bounds.
func clipBoxes(boxes []image.Rectangle, bounds image.Rectangle) []image.Rectangle {
	out := boxes[:0]
	for _, b := range boxes {
		b = b.Intersect(bounds)
		if !b.Empty() {
			out = append(out, b)
		}
	}
	return out
}
