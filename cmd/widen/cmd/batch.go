package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MeKo-Tech/widen/internal/batch"
	"github.com/MeKo-Tech/widen/internal/metrics"
	"github.com/spf13/cobra"
)

func newBatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <paths...>",
		Short: "Convert every image in files and directories",
		Long: `Convert files and directory contents one after another.

Directories are listed in lexicographic order and filtered to supported image
extensions. A failing file is reported and the run continues unless
--continue-on-error=false. Ctrl-C stops after the file in progress.

Examples:
  widen batch photos/
  widen batch photos/ --recursive --include '*-10000px.*'
  widen batch a.jpg b.png --report-format json --report-file report.json
  widen batch photos/ --metrics-textfile /var/lib/node_exporter/widen.prom`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE:         a.runBatch,
	}
	addConversionFlags(cmd)

	f := cmd.Flags()
	f.BoolP("recursive", "r", false, "descend into subdirectories")
	f.StringSlice("include", nil, "only process file names matching these glob patterns")
	f.StringSlice("exclude", nil, "skip file names matching these glob patterns")
	f.Bool("continue-on-error", true, "keep going when a file fails")
	f.String("progress", "", "progress output: bar, log, none")
	f.String("report-format", "", "summary format: text, json, csv")
	f.String("report-file", "", "write the summary to this file instead of stdout")
	f.String("metrics-textfile", "", "write Prometheus metrics to this file after the run")
	bindKey(f, "recursive", "batch.recursive")
	bindKey(f, "include", "batch.include")
	bindKey(f, "exclude", "batch.exclude")
	bindKey(f, "continue-on-error", "batch.continue_on_error")
	bindKey(f, "progress", "batch.progress")
	bindKey(f, "report-format", "output.report_format")
	bindKey(f, "report-file", "output.report_file")
	bindKey(f, "metrics-textfile", "metrics.textfile")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, args []string) error {
	cfg := a.config()

	rec := metrics.NewRecorder()
	conv, err := newConverter(cfg, rec)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	progress, err := batch.NewProgress(cfg.Batch.Progress, cmd.ErrOrStderr(), slog.Default())
	if err != nil {
		return err
	}

	runner := batch.NewRunner(conv, batch.Options{
		Recursive:       cfg.Batch.Recursive,
		Include:         cfg.Batch.Include,
		Exclude:         cfg.Batch.Exclude,
		ContinueOnError: cfg.Batch.ContinueOnError,
		OutputDir:       cfg.Output.Dir,
		Naming:          namingFor(cfg),
		MetricsTextfile: cfg.Metrics.Textfile,
	}).WithProgress(progress).WithMetrics(rec).WithLogger(slog.Default())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := runner.Run(ctx, args)
	if report == nil {
		return runErr
	}

	if cfg.Output.ReportFile != "" {
		if err := batch.SaveReport(cfg.Output.ReportFile, report, cfg.Output.ReportFormat); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), batch.Describe(report))
	} else if err := batch.WriteReport(cmd.OutOrStdout(), report, cfg.Output.ReportFormat); err != nil {
		return err
	}
	return runErr
}
