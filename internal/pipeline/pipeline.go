package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/widen/internal/cascade"
	"github.com/MeKo-Tech/widen/internal/compositor"
	"github.com/MeKo-Tech/widen/internal/detector"
	"github.com/MeKo-Tech/widen/internal/metrics"
	"github.com/MeKo-Tech/widen/internal/models"
	"github.com/MeKo-Tech/widen/internal/retouch"
	"github.com/MeKo-Tech/widen/internal/utils"
)

// PortraitConfig switches the portrait-only retouch steps.
type PortraitConfig struct {
	WatermarkEnabled bool
	Watermark        retouch.WatermarkOptions
	TrimEnabled      bool
	// TrimFuzzPercent is the row-deviation threshold in percent of 255.
	TrimFuzzPercent float64
}

// CascadeConfig orders and tunes the landscape crop strategies.
type CascadeConfig struct {
	Strategies   []string
	FacePolicy   detector.Policy
	BodyPolicy   detector.Policy
	Hair         detector.HairParams
	BodyHeadroom float64
}

// Config holds configuration for the conversion pipeline and its components.
type Config struct {
	ModelsDir  string
	Portrait   PortraitConfig
	Compositor compositor.Config
	Cascade    CascadeConfig
	Detector   detector.Config
	// WidthTolerance is the height drift, in rows, allowed on top of the
	// rounding of the crop height when a landscape crop is scaled to the
	// canvas width.
	WidthTolerance int
	Encode         utils.EncodeOptions
	// DebugDir receives an overlay of the chosen crop window per landscape image.
	DebugDir string
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		ModelsDir: models.GetModelsDir(""),
		Portrait: PortraitConfig{
			WatermarkEnabled: true,
			Watermark:        retouch.DefaultWatermarkOptions(),
			TrimEnabled:      true,
			TrimFuzzPercent:  5,
		},
		Compositor: compositor.DefaultConfig(),
		Cascade: CascadeConfig{
			Strategies:   cascade.DefaultOrder(),
			FacePolicy:   detector.PolicyFirst,
			BodyPolicy:   detector.PolicyTopmost,
			Hair:         detector.DefaultHairParams(),
			BodyHeadroom: 0.2,
		},
		Detector:       detector.DefaultConfig(),
		WidthTolerance: 2,
		Encode:         utils.EncodeOptions{Format: utils.FormatJPEG, Quality: 98},
	}
}

// ResolveModelPaths fills empty detector model paths from the models dir.
func (c *Config) ResolveModelPaths() {
	dir := models.GetModelsDir(c.ModelsDir)
	if c.Detector.Pigo.CascadePath == "" {
		c.Detector.Pigo.CascadePath = models.GetPigoCascadePath(dir)
	}
	if c.Detector.Haar.CascadePath == "" {
		c.Detector.Haar.CascadePath = models.GetHaarCascadePath(dir)
	}
	if c.Detector.ONNX.ModelPath == "" {
		c.Detector.ONNX.ModelPath = models.GetPersonModelPath(dir)
	}
}

// Validate checks the configuration of every stage.
func (c Config) Validate() error {
	if err := c.Compositor.Validate(); err != nil {
		return fmt.Errorf("compositor: %w", err)
	}
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	if c.Portrait.TrimFuzzPercent < 0 || c.Portrait.TrimFuzzPercent > 100 {
		return fmt.Errorf("trim fuzz must be between 0 and 100 percent, got %.2f", c.Portrait.TrimFuzzPercent)
	}
	if c.Portrait.Watermark.WidthRatio < 0 || c.Portrait.Watermark.WidthRatio > 1 ||
		c.Portrait.Watermark.HeightRatio < 0 || c.Portrait.Watermark.HeightRatio > 1 {
		return errors.New("watermark ratios must be between 0 and 1")
	}
	if c.Cascade.BodyHeadroom < 0 {
		return fmt.Errorf("body headroom must not be negative, got %.2f", c.Cascade.BodyHeadroom)
	}
	if c.WidthTolerance < 0 {
		return fmt.Errorf("width tolerance must not be negative, got %d", c.WidthTolerance)
	}
	return nil
}

// Builder constructs a Converter with fluent configuration.
type Builder struct {
	cfg      Config
	registry *detector.Registry
	edge     *detector.EdgeAnalyzer
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithModelsDir sets the models directory used to resolve empty model paths.
func (b *Builder) WithModelsDir(dir string) *Builder {
	if dir != "" {
		b.cfg.ModelsDir = dir
	}
	return b
}

// WithStrategies sets the crop strategy order for landscape images.
func (b *Builder) WithStrategies(names ...string) *Builder {
	if len(names) > 0 {
		b.cfg.Cascade.Strategies = names
	}
	return b
}

// WithResidual sets the compositor residual policy.
func (b *Builder) WithResidual(r compositor.Residual) *Builder {
	b.cfg.Compositor.Residual = r
	return b
}

// WithEncode sets the output encoding.
func (b *Builder) WithEncode(opts utils.EncodeOptions) *Builder {
	b.cfg.Encode = opts
	return b
}

// WithDebugDir enables crop overlays written to dir.
func (b *Builder) WithDebugDir(dir string) *Builder {
	b.cfg.DebugDir = dir
	return b
}

// WithRegistry uses an already constructed detector registry. The converter
// does not close a registry it did not create.
func (b *Builder) WithRegistry(r *detector.Registry) *Builder {
	b.registry = r
	return b
}

// WithEdgeAnalyzer overrides the edge analyzer used by the edge strategy.
func (b *Builder) WithEdgeAnalyzer(e *detector.EdgeAnalyzer) *Builder {
	b.edge = e
	return b
}

// WithMetrics reports stage outcomes to r.
func (b *Builder) WithMetrics(r *metrics.Recorder) *Builder {
	b.recorder = r
	return b
}

// WithLogger sets the logger for stage tracing.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks the configuration without initializing detectors.
func (b *Builder) Validate() error { return b.cfg.Validate() }

// Build initializes the detector registry, the cascade and the compositor.
func (b *Builder) Build() (*Converter, error) {
	b.cfg.ResolveModelPaths()
	if err := b.Validate(); err != nil {
		return nil, err
	}

	comp, err := compositor.New(b.cfg.Compositor)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	registry, owned := b.registry, false
	if registry == nil && needsRegistry(b.cfg.Cascade.Strategies) {
		registry, owned = detector.NewRegistry(b.cfg.Detector), true
	}

	strategies, err := cascade.Build(b.cfg.Cascade.Strategies, cascade.Deps{
		Registry:     registry,
		Edge:         b.edge,
		FacePolicy:   b.cfg.Cascade.FacePolicy,
		BodyPolicy:   b.cfg.Cascade.BodyPolicy,
		Hair:         b.cfg.Cascade.Hair,
		BodyHeadroom: b.cfg.Cascade.BodyHeadroom,
	})
	if err != nil {
		if owned {
			_ = registry.Close()
		}
		return nil, fmt.Errorf("init cascade: %w", err)
	}

	opts := []cascade.Option{cascade.WithLogger(logger)}
	if b.recorder != nil {
		opts = append(opts, cascade.WithObserver(b.recorder))
	}

	return &Converter{
		cfg:          b.cfg,
		compositor:   comp,
		cascade:      cascade.New(strategies, opts...),
		registry:     registry,
		ownsRegistry: owned,
		recorder:     b.recorder,
		logger:       logger,
	}, nil
}

func needsRegistry(names []string) bool {
	if len(names) == 0 {
		names = cascade.DefaultOrder()
	}
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case cascade.NameFace, cascade.NameBody:
			return true
		}
	}
	return false
}

// Converter turns single images into canvas-sized outputs. It is not safe for
// concurrent use.
type Converter struct {
	cfg          Config
	compositor   *compositor.Compositor
	cascade      *cascade.Cascade
	registry     *detector.Registry
	ownsRegistry bool
	recorder     *metrics.Recorder
	logger       *slog.Logger
}

// Close releases detector backends owned by the converter.
func (c *Converter) Close() error {
	if c.ownsRegistry && c.registry != nil {
		err := c.registry.Close()
		c.registry = nil
		return err
	}
	return nil
}

// Config returns the converter configuration.
func (c *Converter) Config() Config { return c.cfg }

// Registry returns the detector registry, nil when no strategy needs one.
func (c *Converter) Registry() *detector.Registry { return c.registry }

// Info returns a map with key converter properties.
func (c *Converter) Info() map[string]interface{} {
	info := map[string]interface{}{
		"models_dir": c.cfg.ModelsDir,
		"canvas":     fmt.Sprintf("%dx%d", c.cfg.Compositor.TargetWidth, c.cfg.Compositor.TargetHeight),
		"strategies": c.cascade.Strategies(),
		"residual":   string(c.cfg.Compositor.Residual),
		"portrait": map[string]interface{}{
			"watermark": c.cfg.Portrait.WatermarkEnabled,
			"trim":      c.cfg.Portrait.TrimEnabled,
		},
		"output_format": c.cfg.Encode.Format,
	}
	if c.registry != nil {
		backends := make([]map[string]interface{}, 0, 2)
		for _, s := range c.registry.Status() {
			entry := map[string]interface{}{
				"role":      s.Role,
				"backend":   s.Backend,
				"available": s.Available,
			}
			if s.Err != nil {
				entry["error"] = s.Err.Error()
			}
			backends = append(backends, entry)
		}
		info["detectors"] = backends
	}
	return info
}
