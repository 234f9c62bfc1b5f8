package batch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/widen/internal/cascade"
	"github.com/MeKo-Tech/widen/internal/compositor"
	"github.com/MeKo-Tech/widen/internal/metrics"
	"github.com/MeKo-Tech/widen/internal/orientation"
	"github.com/MeKo-Tech/widen/internal/pipeline"
	"github.com/MeKo-Tech/widen/internal/testutil"
	"github.com/MeKo-Tech/widen/internal/utils"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConverter answers Process from a table keyed by input base name.
type fakeConverter struct {
	results map[string]*pipeline.Result
	errs    map[string]error
	calls   []string
	onCall  func(n int)
}

func (f *fakeConverter) Process(_ context.Context, in, out string) (*pipeline.Result, error) {
	f.calls = append(f.calls, in)
	if f.onCall != nil {
		f.onCall(len(f.calls))
	}
	name := filepath.Base(in)
	if err, ok := f.errs[name]; ok {
		return nil, &pipeline.ProcessingFailedError{Path: in, Cause: err}
	}
	if res, ok := f.results[name]; ok {
		res.InputPath, res.OutputPath = in, out
		return res, nil
	}
	return &pipeline.Result{
		InputPath:    in,
		OutputPath:   out,
		Orientation:  orientation.Portrait,
		Outcome:      pipeline.OutcomeConverted,
		SourceWidth:  100,
		SourceHeight: 200,
		Layout:       &compositor.Layout{Branch: compositor.BranchExtend},
	}, nil
}

func quietOptions(outDir string) Options {
	opts := DefaultOptions()
	opts.OutputDir = outDir
	return opts
}

func TestRunFiles_MixedOutcomes(t *testing.T) {
	conv := &fakeConverter{
		results: map[string]*pipeline.Result{
			"square.jpg": {Orientation: orientation.Square, Outcome: pipeline.OutcomeSkipped, SourceWidth: 50, SourceHeight: 50},
			"wide.jpg": {
				Orientation: orientation.Landscape,
				Outcome:     pipeline.OutcomeConverted,
				Decision:    &cascade.Decision{Strategy: cascade.NameFace},
			},
		},
		errs: map[string]error{"broken.jpg": errors.New("decode failed")},
	}
	rec := metrics.NewRecorder()
	runner := NewRunner(conv, quietOptions("out")).WithMetrics(rec).WithRunID("run-1")

	rep, err := runner.RunFiles(context.Background(),
		[]string{"in/broken.jpg", "in/portrait-10000px.jpg", "in/square.jpg", "in/wide.jpg"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, 4, rep.Processed())
	assert.Equal(t, 2, rep.Converted)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 1, rep.Failed)
	assert.False(t, rep.Interrupted)

	assert.Equal(t, StatusFailed, rep.Items[0].Status)
	assert.Contains(t, rep.Items[0].Error, "decode failed")
	assert.Equal(t, "unknown", rep.Items[0].Orientation)

	assert.Equal(t, filepath.Join("out", "portrait-4k.jpg"), rep.Items[1].Output)
	assert.Equal(t, "extend", rep.Items[1].Branch)

	assert.Empty(t, rep.Items[2].Output)
	assert.Equal(t, "square", rep.Items[2].Orientation)

	assert.Equal(t, cascade.NameFace, rep.Items[3].Strategy)

	n, err := promtest.GatherAndCount(rec.Registry(), "widen_images_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n, "one series per orientation/outcome pair")
}

func TestRunFiles_StopOnError(t *testing.T) {
	conv := &fakeConverter{errs: map[string]error{"b.jpg": errors.New("write failed")}}
	opts := quietOptions("out")
	opts.ContinueOnError = false

	rep, err := NewRunner(conv, opts).RunFiles(context.Background(), []string{"a.jpg", "b.jpg", "c.jpg"})
	var pf *pipeline.ProcessingFailedError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, "b.jpg", pf.Path)
	assert.Equal(t, 2, rep.Processed())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, conv.calls)
}

func TestRunFiles_CanceledBetweenFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conv := &fakeConverter{onCall: func(n int) {
		if n == 2 {
			cancel()
		}
	}}
	progress := &countingProgress{}

	rep, err := NewRunner(conv, quietOptions("out")).WithProgress(progress).
		RunFiles(ctx, []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, rep.Interrupted)
	assert.Equal(t, 2, rep.Converted, "the file in flight finishes")
	assert.Len(t, conv.calls, 2)
	assert.Equal(t, 1, progress.dones)
}

func TestRunFiles_LogsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	runner := NewRunner(&fakeConverter{}, quietOptions("out")).WithLogger(logger)

	_, err := runner.RunFiles(context.Background(), []string{"a.jpg"})
	require.NoError(t, err)
	assert.NotEmpty(t, runner.RunID())
	assert.Contains(t, buf.String(), `"run_id":"`+runner.RunID()+`"`)
	assert.Contains(t, buf.String(), "Batch finished")
}

func TestRunFiles_WritesMetricsTextfile(t *testing.T) {
	opts := quietOptions("out")
	opts.MetricsTextfile = filepath.Join(t.TempDir(), "widen.prom")

	_, err := NewRunner(&fakeConverter{}, opts).WithMetrics(metrics.NewRecorder()).
		RunFiles(context.Background(), []string{"a.jpg"})
	require.NoError(t, err)

	data, err := os.ReadFile(opts.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `widen_images_total{orientation="portrait",outcome="converted"} 1`)
	assert.Contains(t, string(data), "widen_heap_inuse_bytes")
}

func TestRun_SkipsOutputDirAndEmpty(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "widened", "a-4k.jpg"))

	opts := quietOptions(filepath.Join(dir, "widened"))
	opts.Recursive = true
	conv := &fakeConverter{}
	rep, err := NewRunner(conv, opts).Run(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Processed())
	assert.Equal(t, []string{filepath.Join(dir, "a.jpg")}, conv.calls)

	empty := t.TempDir()
	touch(t, filepath.Join(empty, "readme.txt"))
	_, err = NewRunner(conv, opts).Run(context.Background(), []string{empty})
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	testutil.SaveImage(t, testutil.CreateBandedImage(100, 200, 20, 180), filepath.Join(in, "tall-10000px.png"))
	testutil.SaveImage(t, testutil.CreateGradientImage(400, 300), filepath.Join(in, "wide.png"))
	testutil.SaveImage(t, testutil.CreateTestImage(60, 60, testutil.Paper), filepath.Join(in, "square.png"))

	cfg := pipeline.DefaultConfig()
	cfg.Compositor.TargetWidth = 384
	cfg.Compositor.TargetHeight = 216
	cfg.Compositor.BlurRadius = 5
	cfg.Cascade.Strategies = []string{cascade.NameCenter}
	conv, err := pipeline.NewBuilder().WithConfig(cfg).Build()
	require.NoError(t, err)
	defer func() { _ = conv.Close() }()

	out := filepath.Join(dir, "out")
	rep, err := NewRunner(conv, quietOptions(out)).Run(context.Background(), []string{in})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Converted)
	assert.Equal(t, 1, rep.Skipped)

	for _, name := range []string{"tall-4k.jpg", "wide-4k.jpg"} {
		img := testutil.LoadImage(t, filepath.Join(out, name))
		w, h := utils.Dimensions(img)
		assert.Equal(t, image.Pt(384, 216), image.Pt(w, h), name)
	}
	assert.NoFileExists(t, filepath.Join(out, "square-4k.jpg"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "no report", Describe(nil))
	rep := &Report{}
	rep.add(Item{Status: StatusConverted})
	rep.add(Item{Status: StatusFailed})
	assert.Equal(t, "Processed 2 images: 1 converted, 0 skipped, 1 failed", Describe(rep))
}
