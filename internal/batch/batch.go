package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/widen/internal/common"
	"github.com/MeKo-Tech/widen/internal/mempool"
	"github.com/MeKo-Tech/widen/internal/metrics"
	"github.com/MeKo-Tech/widen/internal/pipeline"
	"github.com/google/uuid"
)

// ErrNoImages is returned when the arguments contain no supported image.
var ErrNoImages = errors.New("no supported images found")

// Converter processes one file. *pipeline.Converter satisfies it.
type Converter interface {
	Process(ctx context.Context, inputPath, outputPath string) (*pipeline.Result, error)
}

// Options controls discovery, naming and error handling of a run.
type Options struct {
	Recursive       bool
	Include         []string
	Exclude         []string
	ContinueOnError bool
	OutputDir       string
	Naming          Naming
	// MetricsTextfile receives the Prometheus text exposition after the run.
	MetricsTextfile string
}

// DefaultOptions returns options matching the default configuration.
func DefaultOptions() Options {
	return Options{
		ContinueOnError: true,
		OutputDir:       "widened",
		Naming:          DefaultNaming(),
	}
}

// Runner drives a Converter over a list of files, one at a time.
type Runner struct {
	conv     Converter
	opts     Options
	progress Progress
	recorder *metrics.Recorder
	logger   *slog.Logger
	runID    string
}

// NewRunner creates a runner with no progress output and a fresh run id.
func NewRunner(conv Converter, opts Options) *Runner {
	return &Runner{
		conv:     conv,
		opts:     opts,
		progress: NoProgress{},
		runID:    uuid.NewString(),
	}
}

// WithProgress sets the progress reporter.
func (r *Runner) WithProgress(p Progress) *Runner {
	if p != nil {
		r.progress = p
	}
	return r
}

// WithMetrics records per-image outcomes and memory usage into rec.
func (r *Runner) WithMetrics(rec *metrics.Recorder) *Runner {
	r.recorder = rec
	return r
}

// WithLogger sets the base logger. The run id is attached to it.
func (r *Runner) WithLogger(l *slog.Logger) *Runner {
	r.logger = l
	return r
}

// WithRunID overrides the generated run id.
func (r *Runner) WithRunID(id string) *Runner {
	if id != "" {
		r.runID = id
	}
	return r
}

// RunID returns the id attached to log lines and reports of this runner.
func (r *Runner) RunID() string { return r.runID }

// Run discovers images under args and processes them.
func (r *Runner) Run(ctx context.Context, args []string) (*Report, error) {
	files, err := DiscoverImages(args, r.opts.Recursive, r.opts.Include, r.opts.Exclude)
	if err != nil {
		return nil, err
	}
	files = r.withoutOutputs(files)
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	return r.RunFiles(ctx, files)
}

// RunFiles processes files in order. A canceled context stops the run
// between files; the partial report is returned together with ctx.Err().
// With ContinueOnError unset the first failure stops the run as well.
func (r *Runner) RunFiles(ctx context.Context, files []string) (*Report, error) {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", r.runID)

	report := &Report{RunID: r.runID, Started: time.Now(), Items: make([]Item, 0, len(files))}
	timer := common.StartTimer("batch")
	logger.Info("Batch started", "files", len(files), "output_dir", r.opts.OutputDir)

	r.progress.Start(len(files))
	runErr := r.loop(ctx, logger, files, report)
	r.progress.Done()

	timer.Stop()
	report.Duration = timer.Duration()

	if r.recorder != nil {
		r.recorder.ObserveMemory(common.GetMemoryStats())
		if err := r.recorder.WriteTextfile(r.opts.MetricsTextfile); err != nil {
			logger.Warn("Failed to write metrics textfile", "path", r.opts.MetricsTextfile, "error", err)
		}
	}

	logger.Info("Batch finished",
		"processed", report.Processed(),
		"converted", report.Converted,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"interrupted", report.Interrupted,
		"duration", report.Duration.Round(time.Millisecond))
	reused, allocated := mempool.Stats()
	logger.Debug("Memory after batch",
		"stats", common.GetMemoryStats().String(),
		"tensor_buffers_reused", reused,
		"tensor_buffers_allocated", allocated)

	return report, runErr
}

func (r *Runner) loop(ctx context.Context, logger *slog.Logger, files []string, report *Report) error {
	for i, in := range files {
		if err := ctx.Err(); err != nil {
			report.Interrupted = true
			logger.Warn("Batch interrupted", "remaining", len(files)-i)
			return err
		}

		out := r.opts.Naming.OutputPath(r.opts.OutputDir, in)
		start := time.Now()
		res, err := r.conv.Process(ctx, in, out)
		item := newItem(in, out, res, err, time.Since(start))
		report.add(item)
		r.recorder.ObserveImage(item.Orientation, string(item.Status), item.Duration)

		if err != nil {
			r.progress.Fail(i+1, in, err)
			if ctx.Err() != nil {
				report.Interrupted = true
				return ctx.Err()
			}
			if !r.opts.ContinueOnError {
				return err
			}
			continue
		}

		logger.Debug("Image done", "input", in, "status", string(item.Status), "output", item.Output)
		r.progress.Advance(i+1, len(files), in)
	}
	return nil
}

// withoutOutputs drops files that live inside the output directory so that
// a second run over the same tree does not widen its own results.
func (r *Runner) withoutOutputs(files []string) []string {
	if r.opts.OutputDir == "" {
		return files
	}
	outDir, err := filepath.Abs(r.opts.OutputDir)
	if err != nil {
		return files
	}
	kept := make([]string, 0, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err == nil && strings.HasPrefix(abs, outDir+string(filepath.Separator)) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func newItem(in, out string, res *pipeline.Result, err error, d time.Duration) Item {
	item := Item{Input: in, Orientation: "unknown", Duration: d}
	if err != nil {
		item.Status = StatusFailed
		item.Error = err.Error()
		return item
	}
	item.Orientation = res.Orientation.String()
	item.Width, item.Height = res.SourceWidth, res.SourceHeight
	if res.Outcome == pipeline.OutcomeSkipped {
		item.Status = StatusSkipped
		return item
	}
	item.Status = StatusConverted
	item.Output = out
	if res.Decision != nil {
		item.Strategy = res.Decision.Strategy
	}
	if res.Layout != nil {
		item.Branch = string(res.Layout.Branch)
	}
	return item
}

// Describe returns a one-line summary suitable for CLI output.
func Describe(rep *Report) string {
	if rep == nil {
		return "no report"
	}
	return fmt.Sprintf("Processed %d images: %d converted, %d skipped, %d failed",
		rep.Processed(), rep.Converted, rep.Skipped, rep.Failed)
}
