package pipeline

import (
	"fmt"

	"github.com/MeKo-Tech/widen/internal/geometry"
)

// ErrDegenerateGeometry is returned when an image cannot be mapped onto the
// canvas: an empty input, or a landscape crop whose scaled height drifts
// beyond the tolerance.
var ErrDegenerateGeometry = geometry.ErrDegenerateGeometry

// ProcessingFailedError reports a per-image failure other than degenerate
// geometry: decode, encode, write or an internal stage error.
type ProcessingFailedError struct {
	Path  string
	Cause error
}

func (e *ProcessingFailedError) Error() string {
	return fmt.Sprintf("processing %s failed: %v", e.Path, e.Cause)
}

func (e *ProcessingFailedError) Unwrap() error { return e.Cause }
