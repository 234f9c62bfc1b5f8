package pipeline

import (
	"encoding/json"
	"errors"
	"image"
	"time"

	"github.com/MeKo-Tech/widen/internal/cascade"
	"github.com/MeKo-Tech/widen/internal/compositor"
	"github.com/MeKo-Tech/widen/internal/orientation"
	"github.com/MeKo-Tech/widen/internal/retouch"
)

// Outcome tells whether an image produced an output.
type Outcome string

const (
	OutcomeConverted Outcome = "converted"
	// OutcomeSkipped is reported for square inputs. It is not an error.
	OutcomeSkipped Outcome = "skipped"
)

// Result describes what happened to one image.
type Result struct {
	InputPath    string                  `json:"input_path,omitempty"`
	OutputPath   string                  `json:"output_path,omitempty"`
	Orientation  orientation.Orientation `json:"-"`
	Outcome      Outcome                 `json:"outcome"`
	SourceWidth  int                     `json:"source_width"`
	SourceHeight int                     `json:"source_height"`

	// Portrait only.
	Watermark image.Rectangle     `json:"-"`
	Trim      *retouch.TrimBounds `json:"trim,omitempty"`

	// Layout is set whenever the compositor ran.
	Layout *compositor.Layout `json:"layout,omitempty"`
	// Decision is set when the crop cascade ran.
	Decision *cascade.Decision `json:"decision,omitempty"`

	Duration time.Duration `json:"duration"`
	// Image is the converted canvas, nil for skipped inputs.
	Image image.Image `json:"-"`
}

// ToJSON serializes a result to pretty JSON.
func ToJSON(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	type alias Result
	b, err := json.MarshalIndent(struct {
		*alias
		Orientation string `json:"orientation"`
	}{alias: (*alias)(res), Orientation: res.Orientation.String()}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
