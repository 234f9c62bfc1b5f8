// Package metrics collects per-run conversion counters and writes them in the
// Prometheus text format.
package metrics

import (
	"fmt"
	"time"

	"github.com/MeKo-Tech/widen/internal/cascade"
	"github.com/MeKo-Tech/widen/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder owns a private registry so that parallel runs and tests never share
// counters. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	imagesTotal        *prometheus.CounterVec
	processingDuration *prometheus.HistogramVec
	strategyTotal      *prometheus.CounterVec
	branchTotal        *prometheus.CounterVec
	trimmedRows        prometheus.Histogram
	heapInuse          prometheus.Gauge
	lastRun            prometheus.Gauge
}

// NewRecorder creates a Recorder with all widen metrics registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		imagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "widen_images_total",
				Help: "Total number of images handled",
			},
			[]string{"orientation", "outcome"}, // outcome: converted, skipped, failed
		),
		processingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "widen_image_processing_duration_seconds",
				Help:    "Per-image conversion duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50},
			},
			[]string{"orientation"},
		),
		strategyTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "widen_crop_strategy_total",
				Help: "Crop strategy attempts by result",
			},
			[]string{"strategy", "outcome"}, // outcome: hit, miss, error, unavailable
		),
		branchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "widen_compositor_branch_total",
				Help: "Canvas composition branches taken",
			},
			[]string{"branch"},
		),
		trimmedRows: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "widen_trimmed_rows",
				Help:    "Rows removed by whitespace trimming",
				Buckets: []float64{0, 10, 50, 100, 250, 500, 1000, 2500},
			},
		),
		heapInuse: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "widen_heap_inuse_bytes",
				Help: "Heap in use when the run finished",
			},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "widen_last_run_timestamp_seconds",
				Help: "Unix time the metrics file was written",
			},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveImage counts one processed image.
func (r *Recorder) ObserveImage(orientation, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.imagesTotal.WithLabelValues(orientation, outcome).Inc()
	r.processingDuration.WithLabelValues(orientation).Observe(d.Seconds())
}

// ObserveStrategy implements cascade.Observer.
func (r *Recorder) ObserveStrategy(strategy string, outcome cascade.Outcome) {
	if r == nil {
		return
	}
	r.strategyTotal.WithLabelValues(strategy, string(outcome)).Inc()
}

// ObserveBranch counts one compositor branch.
func (r *Recorder) ObserveBranch(branch string) {
	if r == nil {
		return
	}
	r.branchTotal.WithLabelValues(branch).Inc()
}

// ObserveTrim records how many rows a trim removed.
func (r *Recorder) ObserveTrim(rows int) {
	if r == nil {
		return
	}
	r.trimmedRows.Observe(float64(rows))
}

// ObserveMemory sets the heap gauge from a memory snapshot.
func (r *Recorder) ObserveMemory(stats common.MemoryStats) {
	if r == nil {
		return
	}
	r.heapInuse.Set(float64(stats.HeapInuse))
}

// WriteTextfile writes all metrics to path in the node_exporter textfile
// format. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	r.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

var _ cascade.Observer = (*Recorder)(nil)
