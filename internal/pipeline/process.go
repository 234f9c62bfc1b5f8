package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/widen/internal/utils"
	"github.com/disintegration/imaging"
)

// debugColor outlines the chosen crop window in debug overlays.
var debugColor = color.NRGBA{R: 255, A: 255}

// Process loads inputPath, converts it and writes the canvas to outputPath.
// The output is written only after conversion succeeded. Degenerate geometry
// and context cancellation are returned as is; every other failure is a
// *ProcessingFailedError.
func (c *Converter) Process(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	if !utils.IsSupportedImage(inputPath) {
		return nil, &ProcessingFailedError{
			Path:  inputPath,
			Cause: fmt.Errorf("unsupported file extension %q", filepath.Ext(inputPath)),
		}
	}

	img, meta, err := utils.LoadImage(inputPath)
	if err != nil {
		return nil, &ProcessingFailedError{Path: inputPath, Cause: err}
	}

	res, err := c.Convert(ctx, img)
	if err != nil {
		if errors.Is(err, ErrDegenerateGeometry) || errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", inputPath, err)
		}
		return nil, &ProcessingFailedError{Path: inputPath, Cause: err}
	}
	res.InputPath = inputPath
	if res.Outcome == OutcomeSkipped {
		return res, nil
	}

	opts := c.cfg.Encode
	opts.ICCProfile = meta.ICCProfile
	if err := utils.SaveImage(res.Image, outputPath, opts); err != nil {
		return nil, &ProcessingFailedError{Path: inputPath, Cause: err}
	}
	res.OutputPath = outputPath

	if c.cfg.DebugDir != "" && res.Decision != nil {
		if err := c.writeOverlay(img, res); err != nil {
			c.logger.Warn("Failed to write debug overlay", "file", inputPath, "error", err)
		}
	}
	return res, nil
}

// writeOverlay saves the source with the crop window outlined.
func (c *Converter) writeOverlay(src image.Image, res *Result) error {
	overlay := imaging.Clone(src)
	thickness := max(2, res.SourceWidth/400)
	utils.DrawRect(overlay, res.Decision.Window(), debugColor, thickness)

	base := strings.TrimSuffix(filepath.Base(res.InputPath), filepath.Ext(res.InputPath))
	path := filepath.Join(c.cfg.DebugDir, base+"-crop-"+res.Decision.Strategy+".png")
	return utils.SaveImage(overlay, path, utils.EncodeOptions{Format: utils.FormatPNG})
}
