package detector

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/MeKo-Tech/widen/internal/mempool"
	"github.com/MeKo-Tech/widen/internal/onnx"
)

// ONNXBodyDetector finds people with a YOLO-style ONNX model whose single
// output is [1, 4+classes, anchors] (or its transpose) with center-format
// boxes in input pixels.
type ONNXBodyDetector struct {
	mu      sync.Mutex
	session *onnx.Session
	cfg     ONNXConfig
}

// NewONNXBodyDetector initializes the runtime and opens the person model.
func NewONNXBodyDetector(cfg ONNXConfig) (*ONNXBodyDetector, error) {
	if cfg.ModelPath == "" {
		return nil, unavailable(BackendONNX, errors.New("no model path configured"))
	}
	if err := onnx.InitializeRuntime(cfg.LibraryPath); err != nil {
		return nil, unavailable(BackendONNX, err)
	}
	session, err := onnx.NewSession(cfg.ModelPath, cfg.NumThreads)
	if err != nil {
		return nil, unavailable(BackendONNX, err)
	}
	return &ONNXBodyDetector{session: session, cfg: cfg}, nil
}

// Name implements BodyDetector.
func (d *ONNXBodyDetector) Name() string { return BackendONNX }

// DetectBodies implements BodyDetector. Boxes come back by descending score.
func (d *ONNXBodyDetector) DetectBodies(img image.Image) ([]image.Rectangle, error) {
	tensor, lb, err := onnx.LetterboxTensor(img, d.cfg.InputSize)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	defer tensor.Release()

	d.mu.Lock()
	data, shape, err := d.session.Run(tensor)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer mempool.PutFloat32(data)

	raw, err := decodeYOLO(data, shape, d.cfg.ClassID, d.cfg.ScoreThreshold, lb, img.Bounds())
	if err != nil {
		return nil, err
	}
	kept := nonMaxSuppression(raw, d.cfg.IoUThreshold)

	boxes := make([]image.Rectangle, len(kept))
	for i, k := range kept {
		boxes[i] = k.Box.Sub(img.Bounds().Min)
	}
	return boxes, nil
}

// Close releases the inference session.
func (d *ONNXBodyDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.Close()
}

// decodeYOLO reads boxes of one class from a [1, C, N] or [1, N, C] output
// where the first four channels are cx, cy, w, h and the rest class scores.
func decodeYOLO(data []float32, shape []int64, classID int, threshold float64,
	lb onnx.Letterbox, bounds image.Rectangle,
) ([]scoredBox, error) {
	if len(shape) != 3 || shape[0] != 1 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	channels, anchors := int(shape[1]), int(shape[2])
	transposed := false
	if channels > anchors {
		channels, anchors = anchors, channels
		transposed = true
	}
	if channels < 5+classID {
		return nil, fmt.Errorf("output has %d channels, class %d needs %d", channels, classID, 5+classID)
	}
	if len(data) != channels*anchors {
		return nil, fmt.Errorf("output length %d does not match shape %v", len(data), shape)
	}

	at := func(c, i int) float32 {
		if transposed {
			return data[i*channels+c]
		}
		return data[c*anchors+i]
	}

	var out []scoredBox
	for i := range anchors {
		score := float64(at(4+classID, i))
		if score < threshold {
			continue
		}
		box := lb.ToSource(at(0, i), at(1, i), at(2, i), at(3, i), bounds)
		if box.Empty() {
			continue
		}
		out = append(out, scoredBox{Box: box, Score: score})
	}
	return out, nil
}
