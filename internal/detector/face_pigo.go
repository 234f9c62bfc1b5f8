package detector

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/MeKo-Tech/widen/internal/utils"
	pigo "github.com/esimov/pigo/core"
)

// 8 skipped header bytes plus the tree depth and tree count words.
const minCascadeLen = 16

// PigoFaceDetector finds faces with a pigo pixel-comparison cascade.
type PigoFaceDetector struct {
	classifier *pigo.Pigo
	cfg        PigoConfig
}

// NewPigoFaceDetector loads the cascade file named in cfg.
func NewPigoFaceDetector(cfg PigoConfig) (*PigoFaceDetector, error) {
	if cfg.CascadePath == "" {
		return nil, unavailable(BackendPigo, errors.New("no cascade path configured"))
	}
	data, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, unavailable(BackendPigo, fmt.Errorf("read cascade: %w", err))
	}
	return NewPigoFaceDetectorFromBytes(data, cfg)
}

// NewPigoFaceDetectorFromBytes unpacks an in-memory cascade.
// pigo indexes into the packet without bounds checks, so malformed input
// panics; that panic is reported as an unavailable backend.
func NewPigoFaceDetectorFromBytes(cascade []byte, cfg PigoConfig) (det *PigoFaceDetector, err error) {
	if len(cascade) < minCascadeLen {
		return nil, unavailable(BackendPigo, fmt.Errorf("cascade too short: %d bytes", len(cascade)))
	}
	defer func() {
		if r := recover(); r != nil {
			det, err = nil, unavailable(BackendPigo, fmt.Errorf("malformed cascade: %v", r))
		}
	}()

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, unavailable(BackendPigo, fmt.Errorf("unpack cascade: %w", err))
	}
	return &PigoFaceDetector{classifier: classifier, cfg: cfg}, nil
}

// Name implements FaceDetector.
func (d *PigoFaceDetector) Name() string { return BackendPigo }

// DetectFaces implements FaceDetector. Boxes are square, centered on the
// detection, in cluster order.
func (d *PigoFaceDetector) DetectFaces(img image.Image) ([]image.Rectangle, error) {
	src := utils.ToNRGBA(img)
	cols, rows := utils.Dimensions(src)
	if cols == 0 || rows == 0 {
		return nil, nil
	}

	maxSize := d.cfg.MaxSize
	if maxSize <= 0 || maxSize > min(cols, rows) {
		maxSize = min(cols, rows)
	}

	params := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0)
	dets = d.classifier.ClusterDetections(dets, d.cfg.IoUThreshold)
	return pigoBoxes(dets, d.cfg.QThreshold, src.Bounds()), nil
}

// pigoBoxes turns clustered detections into square boxes centered on each
// detection, dropping those scoring below minQ and clipping the rest to bounds.
func pigoBoxes(dets []pigo.Detection, minQ float64, bounds image.Rectangle) []image.Rectangle {
	boxes := make([]image.Rectangle, 0, len(dets))
	for _, det := range dets {
		if float64(det.Q) < minQ {
			continue
		}
		half := det.Scale / 2
		boxes = append(boxes, image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half))
	}
	return clipBoxes(boxes, bounds)
}
