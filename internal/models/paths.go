// Package models resolves the on-disk locations of detector cascades and
// model files.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Model file names.
const (
	// Face cascades.
	FacePigoCascade = "facefinder"
	FaceHaarCascade = "haarcascade_frontalface_default.xml"

	// Person detection model with a YOLO-style [1, 4+classes, anchors] output.
	BodyPersonONNX = "yolov8n.onnx"
)

// Model type categories for organized directory structure.
const (
	TypeFace = "face"
	TypeBody = "body"
)

// Default models directory.
const DefaultModelsDir = "models"

// Environment variable for models directory override.
const EnvModelsDir = "WIDEN_MODELS_DIR"

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.New("could not find project root (go.mod not found)")
}

// ModelInfo contains metadata about a model.
type ModelInfo struct {
	Name        string
	Type        string
	Backend     string
	Description string
	Filename    string
}

// GetModelsDir returns the models directory path from various sources
// Priority: 1. Explicit modelsDir parameter, 2. Environment variable, 3. Project root + default.
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}

	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}

	if projectRoot, err := findProjectRoot(); err == nil {
		return filepath.Join(projectRoot, DefaultModelsDir)
	}

	return DefaultModelsDir
}

// ResolveModelPath resolves a model filename to its full path, preferring
// <dir>/<type>/<file> and falling back to the flat <dir>/<file> layout.
func ResolveModelPath(modelsDir, modelType, filename string) string {
	baseDir := GetModelsDir(modelsDir)

	if modelType != "" {
		organizedPath := filepath.Join(baseDir, modelType, filename)
		if _, err := os.Stat(organizedPath); err == nil {
			return organizedPath
		}
	}

	return filepath.Join(baseDir, filename)
}

// GetPigoCascadePath returns the path of the pigo face cascade.
func GetPigoCascadePath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeFace, FacePigoCascade)
}

// GetHaarCascadePath returns the path of the OpenCV frontal face cascade.
func GetHaarCascadePath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeFace, FaceHaarCascade)
}

// GetPersonModelPath returns the path of the ONNX person detector.
func GetPersonModelPath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeBody, BodyPersonONNX)
}

// ValidateModelExists checks if a model file exists at the given path.
func ValidateModelExists(modelPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}
	return nil
}

// ListAvailableModels returns information about the models the detectors can load.
func ListAvailableModels() []ModelInfo {
	return []ModelInfo{
		{
			Name:        "pigo-facefinder",
			Type:        TypeFace,
			Backend:     "pigo",
			Description: "Pixel-intensity-comparison face cascade",
			Filename:    FacePigoCascade,
		},
		{
			Name:        "haar-frontalface",
			Type:        TypeFace,
			Backend:     "haar",
			Description: "OpenCV Haar frontal face cascade",
			Filename:    FaceHaarCascade,
		},
		{
			Name:        "yolov8n-person",
			Type:        TypeBody,
			Backend:     "onnx",
			Description: "YOLOv8n detector, person class",
			Filename:    BodyPersonONNX,
		},
	}
}
