//go:build gocv

package detector

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/MeKo-Tech/widen/internal/geometry"
	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

const (
	gocvEnabled        = true
	defaultFaceBackend = BackendHaar
	defaultBodyBackend = BackendHOG
)

// HaarFaceDetector finds faces with an OpenCV Haar cascade.
type HaarFaceDetector struct {
	mu  sync.Mutex
	cls gocv.CascadeClassifier
	cfg HaarConfig
}

func newHaarFaceDetector(cfg HaarConfig) (FaceDetector, error) {
	if cfg.CascadePath == "" {
		return nil, unavailable(BackendHaar, errors.New("no cascade path configured"))
	}
	cls := gocv.NewCascadeClassifier()
	if !cls.Load(cfg.CascadePath) {
		_ = cls.Close()
		return nil, unavailable(BackendHaar, fmt.Errorf("failed to load cascade %s", cfg.CascadePath))
	}
	return &HaarFaceDetector{cls: cls, cfg: cfg}, nil
}

// Name implements FaceDetector.
func (d *HaarFaceDetector) Name() string { return BackendHaar }

// DetectFaces implements FaceDetector.
func (d *HaarFaceDetector) DetectFaces(img image.Image) ([]image.Rectangle, error) {
	gray, err := grayMat(img)
	if err != nil {
		return nil, err
	}
	defer func() { _ = gray.Close() }()

	minSize := image.Pt(d.cfg.MinSize, d.cfg.MinSize)
	d.mu.Lock()
	rects := d.cls.DetectMultiScaleWithParams(gray, d.cfg.ScaleFactor, d.cfg.MinNeighbors, 0, minSize, image.Point{})
	d.mu.Unlock()

	return clipBoxes(rects, image.Rect(0, 0, gray.Cols(), gray.Rows())), nil
}

// Close releases the cascade.
func (d *HaarFaceDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cls.Close()
}

// HOGBodyDetector finds people with OpenCV's default HOG people detector.
type HOGBodyDetector struct {
	mu  sync.Mutex
	hog gocv.HOGDescriptor
	cfg HOGConfig
}

func newHOGBodyDetector(cfg HOGConfig) (BodyDetector, error) {
	hog := gocv.NewHOGDescriptor()
	people := gocv.HOGDefaultPeopleDetector()
	defer func() { _ = people.Close() }()
	hog.SetSVMDetector(people)
	return &HOGBodyDetector{hog: hog, cfg: cfg}, nil
}

// Name implements BodyDetector.
func (d *HOGBodyDetector) Name() string { return BackendHOG }

// DetectBodies implements BodyDetector. Large inputs are downsampled to
// MaxSide first and the boxes scaled back.
func (d *HOGBodyDetector) DetectBodies(img image.Image) ([]image.Rectangle, error) {
	b := img.Bounds()
	scale := 1.0
	if side := max(b.Dx(), b.Dy()); d.cfg.MaxSide > 0 && side > d.cfg.MaxSide {
		scale = float64(d.cfg.MaxSide) / float64(side)
		img = imaging.Resize(img, max(1, geometry.Round(float64(b.Dx())*scale)), max(1, geometry.Round(float64(b.Dy())*scale)), imaging.Linear)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer func() { _ = mat.Close() }()

	stride := image.Pt(d.cfg.WinStride, d.cfg.WinStride)
	padding := image.Pt(d.cfg.Padding, d.cfg.Padding)
	d.mu.Lock()
	rects := d.hog.DetectMultiScaleWithParams(mat, d.cfg.HitThreshold, stride, padding, d.cfg.Scale, d.cfg.FinalThreshold, false)
	d.mu.Unlock()

	boxes := make([]image.Rectangle, len(rects))
	for i, r := range rects {
		boxes[i] = image.Rect(
			geometry.Round(float64(r.Min.X)/scale), geometry.Round(float64(r.Min.Y)/scale),
			geometry.Round(float64(r.Max.X)/scale), geometry.Round(float64(r.Max.Y)/scale),
		)
	}
	return clipBoxes(boxes, image.Rect(0, 0, b.Dx(), b.Dy())), nil
}

// Close releases the descriptor.
func (d *HOGBodyDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hog.Close()
}

func grayMat(img image.Image) (gocv.Mat, error) {
	rgb, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("convert image: %w", err)
	}
	defer func() { _ = rgb.Close() }()

	gray := gocv.NewMat()
	gocv.CvtColor(rgb, &gray, gocv.ColorRGBToGray)
	return gray, nil
}
