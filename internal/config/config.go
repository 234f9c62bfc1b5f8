package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/widen/internal/cascade"
	"github.com/MeKo-Tech/widen/internal/compositor"
	"github.com/MeKo-Tech/widen/internal/detector"
	"github.com/MeKo-Tech/widen/internal/logging"
	"github.com/MeKo-Tech/widen/internal/models"
	"github.com/MeKo-Tech/widen/internal/pipeline"
	"github.com/MeKo-Tech/widen/internal/retouch"
	"github.com/MeKo-Tech/widen/internal/utils"
	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	ReportText = "text"
	ReportJSON = "json"
	ReportCSV  = "csv"
)

// Progress modes.
const (
	ProgressBar  = "bar"
	ProgressLog  = "log"
	ProgressNone = "none"
)

// DefaultConfig returns a configuration with the documented defaults.
func DefaultConfig() Config {
	comp := compositor.DefaultConfig()
	det := detector.DefaultConfig()
	hair := detector.DefaultHairParams()
	wm := retouch.DefaultWatermarkOptions()

	return Config{
		ModelsDir: models.DefaultModelsDir,
		LogLevel:  "info",
		Verbose:   false,
		Logging: LoggingConfig{
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 2,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Canvas: CanvasConfig{Width: comp.TargetWidth, Height: comp.TargetHeight},
		Portrait: PortraitConfig{
			Watermark: WatermarkConfig{
				Enabled:     true,
				WidthRatio:  wm.WidthRatio,
				HeightRatio: wm.HeightRatio,
				BlurRadius:  wm.BlurRadius,
			},
			Trim: TrimConfig{Enabled: true, FuzzPercent: 5},
		},
		Compositor: CompositorConfig{
			EdgePercent: comp.EdgePercent,
			BlurRadius:  comp.BlurRadius,
			Residual:    string(comp.Residual),
		},
		Cascade: CascadeConfig{
			Strategies:     cascade.DefaultOrder(),
			WidthTolerance: 2,
			Hair: HairConfig{
				BandTop:       hair.BandTop,
				BandBottom:    hair.BandBottom,
				BandHalfWidth: hair.BandHalfWidth,
				LineOffset:    hair.LineOffset,
				ScanDepth:     hair.ScanDepth,
				Threshold:     hair.Threshold,
				MarginRatio:   hair.MarginRatio,
				FallbackRatio: hair.FallbackRatio,
			},
			Body: BodyConfig{HeadroomRatio: 0.2},
		},
		Detectors: DetectorsConfig{
			FaceBackend: detector.DefaultFaceBackend(),
			BodyBackend: detector.DefaultBodyBackend(),
			FacePolicy:  string(detector.PolicyFirst),
			BodyPolicy:  string(detector.PolicyTopmost),
			Pigo: PigoConfig{
				MinSize:      det.Pigo.MinSize,
				MaxSize:      det.Pigo.MaxSize,
				ShiftFactor:  det.Pigo.ShiftFactor,
				ScaleFactor:  det.Pigo.ScaleFactor,
				QThreshold:   det.Pigo.QThreshold,
				IoUThreshold: det.Pigo.IoUThreshold,
			},
			Haar: HaarConfig{
				ScaleFactor:  det.Haar.ScaleFactor,
				MinNeighbors: det.Haar.MinNeighbors,
				MinSize:      det.Haar.MinSize,
			},
			HOG: HOGConfig{
				WinStride:      det.HOG.WinStride,
				Padding:        det.HOG.Padding,
				Scale:          det.HOG.Scale,
				HitThreshold:   det.HOG.HitThreshold,
				FinalThreshold: det.HOG.FinalThreshold,
				MaxSide:        det.HOG.MaxSide,
			},
			ONNX: ONNXConfig{
				InputSize:      det.ONNX.InputSize,
				ClassID:        det.ONNX.ClassID,
				ScoreThreshold: det.ONNX.ScoreThreshold,
				IoUThreshold:   det.ONNX.IoUThreshold,
				NumThreads:     det.ONNX.NumThreads,
			},
		},
		Output: OutputConfig{
			Dir:          "widened",
			Format:       utils.FormatJPEG,
			Quality:      98,
			Suffix:       "-4k",
			StripToken:   "-10000px",
			ReportFormat: ReportText,
		},
		Batch: BatchConfig{
			Recursive:       false,
			ContinueOnError: true,
			Progress:        ProgressBar,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if err := oneOf("logging.format", c.Logging.Format, "json", "text"); err != nil {
		return err
	}

	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("invalid canvas: %dx%d (must be positive)", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.Width*9 != c.Canvas.Height*16 {
		return fmt.Errorf("invalid canvas: %dx%d (must be 16:9)", c.Canvas.Width, c.Canvas.Height)
	}

	if err := validateRatio(c.Portrait.Watermark.WidthRatio, "portrait.watermark.width_ratio"); err != nil {
		return err
	}
	if err := validateRatio(c.Portrait.Watermark.HeightRatio, "portrait.watermark.height_ratio"); err != nil {
		return err
	}
	if c.Portrait.Trim.FuzzPercent < 0 || c.Portrait.Trim.FuzzPercent > 100 {
		return fmt.Errorf("invalid portrait.trim.fuzz_percent: %.2f (must be between 0 and 100)", c.Portrait.Trim.FuzzPercent)
	}

	if _, err := compositor.ParseResidual(c.Compositor.Residual); err != nil {
		return fmt.Errorf("invalid compositor.residual: %w", err)
	}
	if _, err := detector.ParsePolicy(c.Detectors.FacePolicy); err != nil {
		return fmt.Errorf("invalid detectors.face_policy: %w", err)
	}
	if _, err := detector.ParsePolicy(c.Detectors.BodyPolicy); err != nil {
		return fmt.Errorf("invalid detectors.body_policy: %w", err)
	}
	for _, s := range c.Cascade.Strategies {
		if err := oneOf("cascade.strategies", strings.ToLower(strings.TrimSpace(s)),
			cascade.NameFace, cascade.NameBody, cascade.NameEdge, cascade.NameCenter); err != nil {
			return err
		}
	}

	if err := oneOf("output.format", c.Output.Format, utils.FormatJPEG, utils.FormatPNG, utils.FormatWebP); err != nil {
		return err
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("invalid output.quality: %d (must be between 1 and 100)", c.Output.Quality)
	}
	if err := oneOf("output.report_format", c.Output.ReportFormat, ReportText, ReportJSON, ReportCSV); err != nil {
		return err
	}
	if err := oneOf("batch.progress", c.Batch.Progress, ProgressBar, ProgressLog, ProgressNone); err != nil {
		return err
	}

	pcfg, err := c.ToPipelineConfig()
	if err != nil {
		return err
	}
	return pcfg.Validate()
}

// ToPipelineConfig converts the config to the converter configuration.
func (c *Config) ToPipelineConfig() (pipeline.Config, error) {
	residual, err := compositor.ParseResidual(c.Compositor.Residual)
	if err != nil {
		return pipeline.Config{}, err
	}
	facePolicy, err := detector.ParsePolicy(c.Detectors.FacePolicy)
	if err != nil {
		return pipeline.Config{}, err
	}
	bodyPolicy, err := detector.ParsePolicy(c.Detectors.BodyPolicy)
	if err != nil {
		return pipeline.Config{}, err
	}

	cfg := pipeline.DefaultConfig()
	cfg.ModelsDir = models.GetModelsDir(c.ModelsDir)
	cfg.Portrait = pipeline.PortraitConfig{
		WatermarkEnabled: c.Portrait.Watermark.Enabled,
		Watermark: retouch.WatermarkOptions{
			WidthRatio:  c.Portrait.Watermark.WidthRatio,
			HeightRatio: c.Portrait.Watermark.HeightRatio,
			BlurRadius:  c.Portrait.Watermark.BlurRadius,
		},
		TrimEnabled:     c.Portrait.Trim.Enabled,
		TrimFuzzPercent: c.Portrait.Trim.FuzzPercent,
	}
	cfg.Compositor = compositor.Config{
		TargetWidth:  c.Canvas.Width,
		TargetHeight: c.Canvas.Height,
		EdgePercent:  c.Compositor.EdgePercent,
		BlurRadius:   c.Compositor.BlurRadius,
		Residual:     residual,
	}
	cfg.Cascade = pipeline.CascadeConfig{
		Strategies: c.Cascade.Strategies,
		FacePolicy: facePolicy,
		BodyPolicy: bodyPolicy,
		Hair: detector.HairParams{
			BandTop:       c.Cascade.Hair.BandTop,
			BandBottom:    c.Cascade.Hair.BandBottom,
			BandHalfWidth: c.Cascade.Hair.BandHalfWidth,
			LineOffset:    c.Cascade.Hair.LineOffset,
			ScanDepth:     c.Cascade.Hair.ScanDepth,
			Threshold:     c.Cascade.Hair.Threshold,
			MarginRatio:   c.Cascade.Hair.MarginRatio,
			FallbackRatio: c.Cascade.Hair.FallbackRatio,
		},
		BodyHeadroom: c.Cascade.Body.HeadroomRatio,
	}
	cfg.Detector = c.toDetectorConfig()
	cfg.WidthTolerance = c.Cascade.WidthTolerance
	cfg.Encode = utils.EncodeOptions{Format: c.Output.Format, Quality: c.Output.Quality}
	cfg.DebugDir = c.Cascade.DebugDir
	cfg.ResolveModelPaths()
	return cfg, nil
}

// toDetectorConfig converts to detector.Config.
func (c *Config) toDetectorConfig() detector.Config {
	d := c.Detectors
	return detector.Config{
		FaceBackend: d.FaceBackend,
		BodyBackend: d.BodyBackend,
		Pigo: detector.PigoConfig{
			CascadePath:  d.Pigo.CascadePath,
			MinSize:      d.Pigo.MinSize,
			MaxSize:      d.Pigo.MaxSize,
			ShiftFactor:  d.Pigo.ShiftFactor,
			ScaleFactor:  d.Pigo.ScaleFactor,
			QThreshold:   d.Pigo.QThreshold,
			IoUThreshold: d.Pigo.IoUThreshold,
		},
		Haar: detector.HaarConfig{
			CascadePath:  d.Haar.CascadePath,
			ScaleFactor:  d.Haar.ScaleFactor,
			MinNeighbors: d.Haar.MinNeighbors,
			MinSize:      d.Haar.MinSize,
		},
		HOG: detector.HOGConfig{
			WinStride:      d.HOG.WinStride,
			Padding:        d.HOG.Padding,
			Scale:          d.HOG.Scale,
			HitThreshold:   d.HOG.HitThreshold,
			FinalThreshold: d.HOG.FinalThreshold,
			MaxSide:        d.HOG.MaxSide,
		},
		ONNX: detector.ONNXConfig{
			ModelPath:      d.ONNX.ModelPath,
			LibraryPath:    d.ONNX.LibraryPath,
			InputSize:      d.ONNX.InputSize,
			ClassID:        d.ONNX.ClassID,
			ScoreThreshold: d.ONNX.ScoreThreshold,
			IoUThreshold:   d.ONNX.IoUThreshold,
			NumThreads:     d.ONNX.NumThreads,
		},
	}
}

// LoggingOptions converts the logging settings for logging.Setup.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      c.LogLevel,
		Verbose:    c.Verbose,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Compress:   c.Logging.Compress,
	}
}

// ToYAML renders the configuration as YAML.
func (c *Config) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}

// Helper functions

func oneOf(name, value string, allowed ...string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s: %q (must be one of: %s)", name, value, strings.Join(allowed, ", "))
	}
	return nil
}

// validateRatio validates that a value is between 0.0 and 1.0.
func validateRatio(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
