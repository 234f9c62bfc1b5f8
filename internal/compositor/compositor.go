// Package compositor places a 2160-row image onto the 3840x2160 canvas.
//
// Narrow sources are widened with two blurred panels built from their outer
// edge columns, wide sources are center-cropped and exact sources pass
// through untouched.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/MeKo-Tech/widen/internal/geometry"
	"github.com/MeKo-Tech/widen/internal/utils"
	"github.com/disintegration/imaging"
)

// Branch names which composition path ran.
type Branch string

const (
	BranchExtend Branch = "extend"
	BranchCrop   Branch = "crop"
	BranchExact  Branch = "exact"
)

// Residual decides what happens to the odd column left over when the
// missing width cannot be split evenly between the two panels.
type Residual string

const (
	// ResidualStretchRight widens the right panel by the leftover column.
	ResidualStretchRight Residual = "stretch-right"
	// ResidualSeam leaves the leftover column black at the right edge.
	ResidualSeam Residual = "seam"
)

// ParseResidual validates a residual policy name.
func ParseResidual(s string) (Residual, error) {
	switch r := Residual(strings.ToLower(strings.TrimSpace(s))); r {
	case ResidualStretchRight, ResidualSeam:
		return r, nil
	case "":
		return ResidualStretchRight, nil
	default:
		return "", fmt.Errorf("unknown residual policy %q (want %s or %s)", s, ResidualStretchRight, ResidualSeam)
	}
}

// Config holds the canvas geometry and panel styling.
type Config struct {
	TargetWidth  int
	TargetHeight int
	// EdgePercent is the share of the source width sampled for each panel.
	EdgePercent float64
	BlurRadius  float64
	Residual    Residual
}

// DefaultConfig returns the 4K canvas with 1% edge strips blurred at radius 50.
func DefaultConfig() Config {
	return Config{
		TargetWidth:  geometry.CanvasWidth,
		TargetHeight: geometry.CanvasHeight,
		EdgePercent:  1,
		BlurRadius:   50,
		Residual:     ResidualStretchRight,
	}
}

// Validate checks that the configuration can describe a canvas.
func (c Config) Validate() error {
	if c.TargetWidth <= 0 || c.TargetHeight <= 0 {
		return fmt.Errorf("canvas must be positive, got %dx%d", c.TargetWidth, c.TargetHeight)
	}
	if c.EdgePercent <= 0 || c.EdgePercent > 50 {
		return fmt.Errorf("edge percent must be in (0, 50], got %g", c.EdgePercent)
	}
	if c.BlurRadius < 0 {
		return fmt.Errorf("blur radius must not be negative, got %g", c.BlurRadius)
	}
	if _, err := ParseResidual(string(c.Residual)); err != nil {
		return err
	}
	return nil
}

// Layout describes how a source of a given width maps onto the canvas.
type Layout struct {
	Branch      Branch
	SourceWidth int
	// EdgeWidth is the number of source columns sampled per panel.
	EdgeWidth  int
	LeftWidth  int
	RightWidth int
	// SourceX is where the source is pasted; CropX is where the crop
	// window starts in the source. Only one of them is used per branch.
	SourceX int
	CropX   int
}

// Total returns the number of canvas columns covered by the layout.
func (l Layout) Total(targetWidth int) int {
	switch l.Branch {
	case BranchExtend:
		return l.LeftWidth + l.SourceWidth + l.RightWidth
	default:
		return targetWidth
	}
}

// Compositor builds canvases according to its Config.
type Compositor struct {
	cfg Config
}

// New creates a Compositor after validating cfg.
func New(cfg Config) (*Compositor, error) {
	if cfg.Residual == "" {
		cfg.Residual = ResidualStretchRight
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid compositor config: %w", err)
	}
	return &Compositor{cfg: cfg}, nil
}

// Config returns the compositor configuration.
func (c *Compositor) Config() Config { return c.cfg }

// Plan computes the layout for a source that is width columns wide.
func (c *Compositor) Plan(width int) Layout {
	tw := c.cfg.TargetWidth
	l := Layout{SourceWidth: width}

	switch {
	case width == tw:
		l.Branch = BranchExact
	case width > tw:
		l.Branch = BranchCrop
		l.CropX = (width - tw) / 2
	default:
		l.Branch = BranchExtend
		l.EdgeWidth = min(width, max(1, geometry.Round(float64(width)*c.cfg.EdgePercent/100)))
		blur := (tw - width) / 2
		l.LeftWidth = blur
		l.RightWidth = blur
		if c.cfg.Residual == ResidualStretchRight {
			l.RightWidth += tw - width - 2*blur
		}
		l.SourceX = blur
	}
	return l
}

// Compose places img onto the canvas. Sources that are not exactly
// TargetHeight rows tall are first resampled to that height at their
// current width. Exact-width inputs are returned as the same value.
func (c *Compositor) Compose(img image.Image) (image.Image, Layout, error) {
	w, h := utils.Dimensions(img)
	if w == 0 || h == 0 {
		return nil, Layout{}, fmt.Errorf("compose %dx%d source: %w", w, h, geometry.ErrDegenerateGeometry)
	}
	if h != c.cfg.TargetHeight {
		img = imaging.Resize(img, w, c.cfg.TargetHeight, imaging.Lanczos)
	}

	layout := c.Plan(w)
	switch layout.Branch {
	case BranchExact:
		return img, layout, nil
	case BranchCrop:
		rect := image.Rect(layout.CropX, 0, layout.CropX+c.cfg.TargetWidth, c.cfg.TargetHeight)
		return utils.CropImageRect(img, rect), layout, nil
	default:
		return c.extend(img, layout), layout, nil
	}
}

func (c *Compositor) extend(img image.Image, l Layout) *image.NRGBA {
	th := c.cfg.TargetHeight
	canvas := imaging.New(c.cfg.TargetWidth, th, color.NRGBA{A: 255})

	if l.LeftWidth > 0 {
		strip := utils.CropImageRect(img, image.Rect(0, 0, l.EdgeWidth, th))
		canvas = imaging.Paste(canvas, c.panel(strip, l.LeftWidth), image.Pt(0, 0))
	}
	canvas = imaging.Paste(canvas, img, image.Pt(l.SourceX, 0))
	if l.RightWidth > 0 {
		strip := utils.CropImageRect(img, image.Rect(l.SourceWidth-l.EdgeWidth, 0, l.SourceWidth, th))
		canvas = imaging.Paste(canvas, c.panel(strip, l.RightWidth), image.Pt(l.SourceX+l.SourceWidth, 0))
	}
	return canvas
}

func (c *Compositor) panel(strip image.Image, width int) *image.NRGBA {
	out := imaging.Resize(strip, width, c.cfg.TargetHeight, imaging.Lanczos)
	if c.cfg.BlurRadius > 0 {
		out = imaging.Blur(out, c.cfg.BlurRadius)
	}
	return out
}
