package cmd

import (
	"log/slog"

	"github.com/MeKo-Tech/widen/internal/batch"
	"github.com/MeKo-Tech/widen/internal/config"
	"github.com/MeKo-Tech/widen/internal/metrics"
	"github.com/MeKo-Tech/widen/internal/pipeline"
	"github.com/spf13/cobra"
)

// addConversionFlags registers the flags shared by image and batch.
func addConversionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("output-dir", "", "directory for converted images (default \"widened\")")
	f.String("format", "", "output format: jpeg, png, webp")
	f.Int("quality", 0, "JPEG/WebP quality 1-100 (default 98)")
	f.StringSlice("strategies", nil, "landscape crop strategies in order (edge, face, body, center)")
	f.String("residual", "", "residual pixel policy for widened images: stretch-right, seam")
	f.String("debug-dir", "", "write crop overlays for landscape images into this directory")
	bindKey(f, "output-dir", "output.dir")
	bindKey(f, "format", "output.format")
	bindKey(f, "quality", "output.quality")
	bindKey(f, "strategies", "cascade.strategies")
	bindKey(f, "residual", "compositor.residual")
	bindKey(f, "debug-dir", "cascade.debug_dir")
}

// newConverter builds a converter from the loaded configuration.
func newConverter(cfg *config.Config, rec *metrics.Recorder) (*pipeline.Converter, error) {
	pcfg, err := cfg.ToPipelineConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.NewBuilder().
		WithConfig(pcfg).
		WithMetrics(rec).
		WithLogger(slog.Default()).
		Build()
}

// namingFor derives output naming from the output section.
func namingFor(cfg *config.Config) batch.Naming {
	return batch.Naming{
		StripToken: cfg.Output.StripToken,
		Suffix:     cfg.Output.Suffix,
		Format:     cfg.Output.Format,
	}
}
