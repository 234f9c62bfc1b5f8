// Package common provides stage timing and memory reporting helpers.
package common

import (
	"log/slog"
	"time"
)

// Timer measures one stage of a conversion or a batch run.
type Timer struct {
	stage    string
	start    time.Time
	duration time.Duration
}

// StartTimer starts timing the named stage.
func StartTimer(stage string) *Timer {
	return &Timer{stage: stage, start: time.Now()}
}

// Stop records and returns the elapsed time. Later calls overwrite the
// recorded value.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration is zero until Stop has been called.
func (t *Timer) Duration() time.Duration { return t.duration }

// Stage returns the stage name.
func (t *Timer) Stage() string { return t.stage }

// LogValue groups the stage name and the recorded duration in milliseconds.
func (t *Timer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("stage", t.stage),
		slog.Float64("ms", float64(t.duration.Microseconds())/1000),
	)
}
