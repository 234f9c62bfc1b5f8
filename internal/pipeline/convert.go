package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/MeKo-Tech/widen/internal/common"
	"github.com/MeKo-Tech/widen/internal/geometry"
	"github.com/MeKo-Tech/widen/internal/orientation"
	"github.com/MeKo-Tech/widen/internal/retouch"
	"github.com/MeKo-Tech/widen/internal/utils"
)

// Convert maps one decoded image onto the canvas. Square inputs are reported
// as OutcomeSkipped with a nil error and no image.
func (c *Converter) Convert(ctx context.Context, img image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer := common.StartTimer("convert")

	w, h := utils.Dimensions(img)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("source is %dx%d: %w", w, h, ErrDegenerateGeometry)
	}

	res := &Result{
		Orientation:  orientation.Classify(w, h),
		SourceWidth:  w,
		SourceHeight: h,
	}
	c.logger.Debug("Original size", "width", w, "height", h, "orientation", res.Orientation.String())

	var err error
	switch res.Orientation {
	case orientation.Square:
		res.Outcome = OutcomeSkipped
		c.logger.Debug("Square image skipped", "width", w, "height", h)
	case orientation.Portrait:
		err = c.convertPortrait(ctx, utils.ToNRGBA(img), res)
	case orientation.Landscape:
		err = c.convertLandscape(ctx, utils.ToNRGBA(img), res)
	}
	if err != nil {
		return nil, err
	}

	res.Duration = timer.Stop()
	c.logger.Debug("Image converted", "outcome", string(res.Outcome), "timing", timer)
	return res, nil
}

func (c *Converter) convertPortrait(ctx context.Context, img *image.NRGBA, res *Result) error {
	var work image.Image = img

	if c.cfg.Portrait.WatermarkEnabled {
		work, res.Watermark = retouch.RemoveWatermark(work, c.cfg.Portrait.Watermark)
		c.logger.Debug("Watermark region blurred",
			"width", res.Watermark.Dx(), "height", res.Watermark.Dy(),
			"x", res.Watermark.Min.X, "y", res.Watermark.Min.Y)
	}

	if c.cfg.Portrait.TrimEnabled {
		var bounds retouch.TrimBounds
		work, bounds = retouch.TrimWhitespace(work, c.cfg.Portrait.TrimFuzzPercent)
		res.Trim = &bounds
		removed := res.SourceHeight - (bounds.Bottom - bounds.Top)
		c.recorder.ObserveTrim(removed)
		c.logger.Debug("Whitespace trimmed",
			"top", bounds.Top, "bottom", res.SourceHeight-bounds.Bottom, "rows_removed", removed)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return c.compose(work, res)
}

func (c *Converter) convertLandscape(ctx context.Context, img *image.NRGBA, res *Result) error {
	w, h := res.SourceWidth, res.SourceHeight
	targetHeight := geometry.TargetHeight(w)

	// Sources at or beyond 16:9 have no vertical slack; the compositor crops
	// them horizontally instead.
	if targetHeight >= h {
		c.logger.Debug("Source at least 16:9, cropping horizontally", "width", w, "height", h)
		return c.compose(img, res)
	}

	decision := c.cascade.Decide(img)
	res.Decision = &decision
	c.logger.Debug("Crop window chosen",
		"strategy", decision.Strategy, "crop_y", decision.CropY,
		"target_height", decision.TargetHeight)

	if err := ctx.Err(); err != nil {
		return err
	}

	cropped := utils.CropImageRect(img, decision.Window())
	out, err := retouch.ResizeToWidth(cropped,
		c.cfg.Compositor.TargetWidth, c.cfg.Compositor.TargetHeight, c.cfg.WidthTolerance)
	if err != nil {
		return err
	}
	c.logger.Debug("Resized to canvas width", "width", out.Bounds().Dx(), "height", out.Bounds().Dy())
	res.Image = out
	res.Outcome = OutcomeConverted
	return nil
}

// compose height-normalizes work and hands it to the compositor.
func (c *Converter) compose(work image.Image, res *Result) error {
	resized, err := retouch.ResizeToHeight(work, c.cfg.Compositor.TargetHeight)
	if err != nil {
		return err
	}
	c.logger.Debug("Resized to canvas height", "width", resized.Bounds().Dx(), "height", resized.Bounds().Dy())

	out, layout, err := c.compositor.Compose(resized)
	if err != nil {
		return err
	}
	c.recorder.ObserveBranch(string(layout.Branch))
	c.logger.Debug("Canvas composed",
		"branch", string(layout.Branch), "edge_width", layout.EdgeWidth,
		"left", layout.LeftWidth, "right", layout.RightWidth, "crop_x", layout.CropX)

	res.Layout = &layout
	res.Image = out
	res.Outcome = OutcomeConverted
	return nil
}
