package cascade

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/widen/internal/detector"
	"github.com/MeKo-Tech/widen/internal/geometry"
)

// Strategy names as used in configuration.
const (
	NameFace   = "face"
	NameBody   = "body"
	NameEdge   = "edge"
	NameCenter = "center"
)

// DefaultOrder is the strategy order used when none is configured.
func DefaultOrder() []string {
	return []string{NameFace, NameBody, NameCenter}
}

// FaceStrategy anchors the window just above the hair of the selected face.
type FaceStrategy struct {
	Registry *detector.Registry
	Policy   detector.Policy
	Hair     detector.HairParams
}

// Name implements Strategy.
func (FaceStrategy) Name() string { return NameFace }

// Anchor implements Strategy.
func (s FaceStrategy) Anchor(f Frame) (int, bool, error) {
	fd, err := s.Registry.Face()
	if err != nil {
		return 0, false, err
	}
	faces, err := fd.DetectFaces(f.Image)
	if err != nil {
		return 0, false, fmt.Errorf("%s face detection: %w", fd.Name(), err)
	}
	face, ok := detector.Select(faces, s.Policy)
	if !ok {
		return 0, false, nil
	}
	res := detector.HairTop(f.Image, face, s.Hair)
	return res.Anchor, true, nil
}

// BodyStrategy anchors the window a little above the selected person.
type BodyStrategy struct {
	Registry *detector.Registry
	Policy   detector.Policy
	// HeadroomRatio of the body height is kept above the body box.
	HeadroomRatio float64
}

// Name implements Strategy.
func (BodyStrategy) Name() string { return NameBody }

// Anchor implements Strategy.
func (s BodyStrategy) Anchor(f Frame) (int, bool, error) {
	bd, err := s.Registry.Body()
	if err != nil {
		return 0, false, err
	}
	bodies, err := bd.DetectBodies(f.Image)
	if err != nil {
		return 0, false, fmt.Errorf("%s body detection: %w", bd.Name(), err)
	}
	body, ok := detector.Select(bodies, s.Policy)
	if !ok {
		return 0, false, nil
	}
	return max(0, body.Min.Y-geometry.Round(s.HeadroomRatio*float64(body.Dy()))), true, nil
}

// EdgeStrategy centers the window on the most salient full-width region.
type EdgeStrategy struct {
	Analyzer *detector.EdgeAnalyzer
}

// Name implements Strategy.
func (EdgeStrategy) Name() string { return NameEdge }

// Anchor implements Strategy.
func (s EdgeStrategy) Anchor(f Frame) (int, bool, error) {
	if f.TargetHeight >= f.Height() {
		return 0, false, nil
	}
	det, err := s.Analyzer.BestWindow(f.Image, f.Width(), f.TargetHeight)
	if err != nil {
		return 0, false, err
	}
	if det.Kind != detector.KindEdge {
		return 0, false, nil
	}
	center := (det.Box.Min.Y + det.Box.Max.Y) / 2
	return center - f.TargetHeight/2, true, nil
}

// CenterStrategy centers the window vertically. It always answers.
type CenterStrategy struct{}

// Name implements Strategy.
func (CenterStrategy) Name() string { return NameCenter }

// Anchor implements Strategy.
func (CenterStrategy) Anchor(f Frame) (int, bool, error) {
	return (f.Height() - f.TargetHeight) / 2, true, nil
}

// Deps are the collaborators strategies are built from.
type Deps struct {
	Registry     *detector.Registry
	Edge         *detector.EdgeAnalyzer
	FacePolicy   detector.Policy
	BodyPolicy   detector.Policy
	Hair         detector.HairParams
	BodyHeadroom float64
}

// Build turns configured names into strategies, in order.
func Build(names []string, deps Deps) ([]Strategy, error) {
	if len(names) == 0 {
		names = DefaultOrder()
	}
	seen := make(map[string]bool, len(names))
	out := make([]Strategy, 0, len(names)+1)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if seen[name] {
			return nil, fmt.Errorf("strategy %q listed twice", name)
		}
		seen[name] = true

		switch name {
		case NameFace:
			if deps.Registry == nil {
				return nil, fmt.Errorf("strategy %q needs a detector registry", name)
			}
			out = append(out, FaceStrategy{Registry: deps.Registry, Policy: deps.FacePolicy, Hair: deps.Hair})
		case NameBody:
			if deps.Registry == nil {
				return nil, fmt.Errorf("strategy %q needs a detector registry", name)
			}
			out = append(out, BodyStrategy{Registry: deps.Registry, Policy: deps.BodyPolicy, HeadroomRatio: deps.BodyHeadroom})
		case NameEdge:
			analyzer := deps.Edge
			if analyzer == nil {
				analyzer = detector.NewEdgeAnalyzer()
			}
			out = append(out, EdgeStrategy{Analyzer: analyzer})
		case NameCenter:
			out = append(out, CenterStrategy{})
		default:
			return nil, fmt.Errorf("unknown strategy %q (want %s, %s, %s or %s)", raw, NameFace, NameBody, NameEdge, NameCenter)
		}
	}
	return out, nil
}
