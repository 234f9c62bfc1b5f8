package detector

import (
	"fmt"
	"strings"
)

// Backend names.
const (
	BackendPigo = "pigo"
	BackendHaar = "haar"
	BackendONNX = "onnx"
	BackendHOG  = "hog"
	BackendNone = "none"
)

// PigoConfig tunes the pigo face cascade.
type PigoConfig struct {
	CascadePath string
	MinSize     int
	MaxSize     int
	ShiftFactor float64
	ScaleFactor float64
	// QThreshold is the minimum detection score, pigo's counterpart of a
	// Haar cascade's min-neighbors count.
	QThreshold float64
	// IoUThreshold merges overlapping raw detections.
	IoUThreshold float64
}

// HaarConfig tunes the OpenCV Haar face cascade.
type HaarConfig struct {
	CascadePath  string
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int
}

// HOGConfig tunes the OpenCV HOG people detector.
type HOGConfig struct {
	WinStride      int
	Padding        int
	Scale          float64
	HitThreshold   float64
	FinalThreshold float64
	// MaxSide downsamples larger inputs before detection; 0 disables it.
	MaxSide int
}

// ONNXConfig tunes the ONNX person detector.
type ONNXConfig struct {
	ModelPath      string
	LibraryPath    string
	InputSize      int
	ClassID        int
	ScoreThreshold float64
	IoUThreshold   float64
	NumThreads     int
}

// Config selects and configures the face and body backends. Empty backend
// names pick the build's default.
type Config struct {
	FaceBackend string
	BodyBackend string
	Pigo        PigoConfig
	Haar        HaarConfig
	HOG         HOGConfig
	ONNX        ONNXConfig
}

// DefaultConfig returns the detector parameters with build-default backends.
// Model paths are left empty; callers resolve them against the models dir.
func DefaultConfig() Config {
	return Config{
		FaceBackend: "",
		BodyBackend: "",
		Pigo: PigoConfig{
			MinSize:      30,
			MaxSize:      2000,
			ShiftFactor:  0.1,
			ScaleFactor:  1.1,
			QThreshold:   5,
			IoUThreshold: 0.2,
		},
		Haar: HaarConfig{
			ScaleFactor:  1.1,
			MinNeighbors: 5,
			MinSize:      30,
		},
		HOG: HOGConfig{
			WinStride:      8,
			Padding:        8,
			Scale:          1.05,
			HitThreshold:   0,
			FinalThreshold: 2,
			MaxSide:        1280,
		},
		ONNX: ONNXConfig{
			InputSize:      640,
			ClassID:        0,
			ScoreThreshold: 0.4,
			IoUThreshold:   0.45,
			NumThreads:     0,
		},
	}
}

// DefaultFaceBackend returns the face backend used when none is configured.
func DefaultFaceBackend() string { return defaultFaceBackend }

// DefaultBodyBackend returns the body backend used when none is configured.
func DefaultBodyBackend() string { return defaultBodyBackend }

// GoCVEnabled reports whether the binary was built with OpenCV support.
func GoCVEnabled() bool { return gocvEnabled }

// Validate checks backend names and numeric parameters.
func (c Config) Validate() error {
	switch strings.ToLower(c.FaceBackend) {
	case "", BackendPigo, BackendHaar, BackendNone:
	default:
		return fmt.Errorf("unknown face backend %q (want %s, %s or %s)", c.FaceBackend, BackendPigo, BackendHaar, BackendNone)
	}
	switch strings.ToLower(c.BodyBackend) {
	case "", BackendONNX, BackendHOG, BackendNone:
	default:
		return fmt.Errorf("unknown body backend %q (want %s, %s or %s)", c.BodyBackend, BackendONNX, BackendHOG, BackendNone)
	}
	if c.Pigo.ScaleFactor <= 1 || c.Haar.ScaleFactor <= 1 || c.HOG.Scale <= 1 {
		return fmt.Errorf("scale factors must be greater than 1")
	}
	if c.Pigo.MinSize <= 0 || c.Haar.MinSize <= 0 {
		return fmt.Errorf("minimum face size must be positive")
	}
	if c.Haar.MinNeighbors < 0 {
		return fmt.Errorf("min neighbors must not be negative, got %d", c.Haar.MinNeighbors)
	}
	if c.ONNX.InputSize <= 0 || c.ONNX.InputSize%32 != 0 {
		return fmt.Errorf("onnx input size must be a positive multiple of 32, got %d", c.ONNX.InputSize)
	}
	if c.ONNX.ScoreThreshold < 0 || c.ONNX.ScoreThreshold > 1 {
		return fmt.Errorf("onnx score threshold must be in [0, 1], got %g", c.ONNX.ScoreThreshold)
	}
	return nil
}

func (c Config) faceBackend() string {
	if c.FaceBackend == "" {
		return defaultFaceBackend
	}
	return strings.ToLower(c.FaceBackend)
}

func (c Config) bodyBackend() string {
	if c.BodyBackend == "" {
		return defaultBodyBackend
	}
	return strings.ToLower(c.BodyBackend)
}
