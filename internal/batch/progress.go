package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Progress receives per-file updates from a batch run.
type Progress interface {
	// Start is called once before the first file with the number of files.
	Start(total int)
	// Advance is called after each file with the 1-based index of that file.
	Advance(current, total int, path string)
	// Fail is called when the file at current could not be processed.
	Fail(current int, path string, err error)
	// Done is called once after the last file, including interrupted runs.
	Done()
}

// NoProgress discards every update.
type NoProgress struct{}

func (NoProgress) Start(int)                {}
func (NoProgress) Advance(int, int, string) {}
func (NoProgress) Fail(int, string, error)  {}
func (NoProgress) Done()                    {}

// BarProgress draws a single-line progress bar.
type BarProgress struct {
	mu       sync.Mutex
	w        io.Writer
	width    int
	interval time.Duration
	started  time.Time
	drawn    time.Time
}

// NewBarProgress creates a bar writing to w, stderr when w is nil.
func NewBarProgress(w io.Writer) *BarProgress {
	if w == nil {
		w = os.Stderr
	}
	return &BarProgress{w: w, width: 40, interval: 100 * time.Millisecond}
}

// WithWidth sets the number of bar cells.
func (b *BarProgress) WithWidth(width int) *BarProgress {
	if width > 0 {
		b.width = width
	}
	return b
}

func (b *BarProgress) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = time.Now()
	b.drawn = time.Time{}
	_, _ = fmt.Fprintf(b.w, "widening %d images\n", total)
}

func (b *BarProgress) Advance(current, total int, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if current < total && now.Sub(b.drawn) < b.interval {
		return
	}
	b.drawn = now
	b.draw(current, total, filepath.Base(path), now)
}

func (b *BarProgress) Fail(current int, path string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = fmt.Fprintf(b.w, "\n[%d] %s: %v\n", current, filepath.Base(path), err)
}

func (b *BarProgress) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = fmt.Fprintf(b.w, "\ndone in %v\n", time.Since(b.started).Round(time.Millisecond))
}

func (b *BarProgress) draw(current, total int, name string, now time.Time) {
	if total <= 0 {
		return
	}
	filled := min(b.width, b.width*current/total)
	line := fmt.Sprintf("\r[%s%s] %d/%d %s",
		strings.Repeat("#", filled), strings.Repeat(".", b.width-filled), current, total, name)

	if elapsed := now.Sub(b.started); elapsed > 0 && current > 0 && current < total {
		eta := time.Duration(float64(elapsed) * float64(total-current) / float64(current))
		line += fmt.Sprintf(" ETA %v", eta.Round(time.Second))
	}
	_, _ = fmt.Fprint(b.w, line)
}

// LogProgress reports progress through slog, every interval files.
type LogProgress struct {
	logger   *slog.Logger
	level    slog.Level
	interval int
	last     int
	started  time.Time
}

// NewLogProgress creates a log reporter. A nil logger uses slog.Default.
func NewLogProgress(logger *slog.Logger, level slog.Level) *LogProgress {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgress{logger: logger, level: level, interval: 10}
}

// WithInterval sets how many files pass between log lines.
func (l *LogProgress) WithInterval(n int) *LogProgress {
	if n > 0 {
		l.interval = n
	}
	return l
}

func (l *LogProgress) Start(total int) {
	l.started = time.Now()
	l.last = 0
	l.logger.Log(context.Background(), l.level, "Batch started", "total", total)
}

func (l *LogProgress) Advance(current, total int, path string) {
	if current-l.last < l.interval && current != total {
		return
	}
	l.last = current
	l.logger.Log(context.Background(), l.level, "Batch progress",
		"current", current,
		"total", total,
		"last", path,
		"elapsed", time.Since(l.started).Round(time.Millisecond))
}

func (l *LogProgress) Fail(current int, path string, err error) {
	l.logger.Error("Image failed", "index", current, "input", path, "error", err)
}

func (l *LogProgress) Done() {
	l.logger.Log(context.Background(), l.level, "Batch finished",
		"elapsed", time.Since(l.started).Round(time.Millisecond))
}

// MultiProgress fans updates out to several reporters.
type MultiProgress []Progress

func (m MultiProgress) Start(total int) {
	for _, p := range m {
		p.Start(total)
	}
}

func (m MultiProgress) Advance(current, total int, path string) {
	for _, p := range m {
		p.Advance(current, total, path)
	}
}

func (m MultiProgress) Fail(current int, path string, err error) {
	for _, p := range m {
		p.Fail(current, path, err)
	}
}

func (m MultiProgress) Done() {
	for _, p := range m {
		p.Done()
	}
}

// NewProgress returns the reporter for a progress mode: "bar", "log" or "none".
func NewProgress(mode string, w io.Writer, logger *slog.Logger) (Progress, error) {
	switch strings.ToLower(mode) {
	case "", "bar":
		return NewBarProgress(w), nil
	case "log":
		return NewLogProgress(logger, slog.LevelInfo), nil
	case "none":
		return NoProgress{}, nil
	default:
		return nil, fmt.Errorf("unknown progress mode %q", mode)
	}
}
