package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.1, cfg.Haar.ScaleFactor)
	assert.Equal(t, 5, cfg.Haar.MinNeighbors)
	assert.Equal(t, 30, cfg.Haar.MinSize)
	assert.Equal(t, 8, cfg.HOG.WinStride)
	assert.Equal(t, 8, cfg.HOG.Padding)
	assert.Equal(t, 1.05, cfg.HOG.Scale)
}

func TestConfigValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"face backend":   func(c *Config) { c.FaceBackend = "dlib" },
		"body backend":   func(c *Config) { c.BodyBackend = "yolo" },
		"scale factor":   func(c *Config) { c.Haar.ScaleFactor = 1 },
		"min size":       func(c *Config) { c.Pigo.MinSize = 0 },
		"min neighbors":  func(c *Config) { c.Haar.MinNeighbors = -1 },
		"input size":     func(c *Config) { c.ONNX.InputSize = 100 },
		"score treshold": func(c *Config) { c.ONNX.ScoreThreshold = 2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultBackends(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultFaceBackend(), cfg.faceBackend())
	assert.Equal(t, DefaultBodyBackend(), cfg.bodyBackend())

	cfg.FaceBackend = "NONE"
	assert.Equal(t, BackendNone, cfg.faceBackend())

	if GoCVEnabled() {
		assert.Equal(t, BackendHaar, DefaultFaceBackend())
		assert.Equal(t, BackendHOG, DefaultBodyBackend())
	} else {
		assert.Equal(t, BackendPigo, DefaultFaceBackend())
		assert.Equal(t, BackendONNX, DefaultBodyBackend())
	}
}
