package batch

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Status is the per-file result of a batch run.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Item is one processed file.
type Item struct {
	Input       string        `json:"input"`
	Output      string        `json:"output,omitempty"`
	Status      Status        `json:"status"`
	Orientation string        `json:"orientation"`
	Strategy    string        `json:"strategy,omitempty"`
	Branch      string        `json:"branch,omitempty"`
	Width       int           `json:"width,omitempty"`
	Height      int           `json:"height,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	Error       string        `json:"error,omitempty"`
}

// Report summarizes a batch run.
type Report struct {
	RunID       string        `json:"run_id"`
	Started     time.Time     `json:"started"`
	Duration    time.Duration `json:"duration_ns"`
	Converted   int           `json:"converted"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	Interrupted bool          `json:"interrupted,omitempty"`
	Items       []Item        `json:"items"`
}

func (r *Report) add(item Item) {
	r.Items = append(r.Items, item)
	switch item.Status {
	case StatusConverted:
		r.Converted++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

// Processed is the number of files the run looked at.
func (r *Report) Processed() int { return len(r.Items) }

// FormatReport renders the report as text, json or csv.
func FormatReport(rep *Report, format string) (string, error) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, rep, format); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteReport writes the report to w in the given format.
func WriteReport(w io.Writer, rep *Report, format string) error {
	if rep == nil {
		return fmt.Errorf("nil report")
	}
	switch strings.ToLower(format) {
	case "", FormatText:
		return writeText(w, rep)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatCSV:
		return writeCSV(w, rep)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// SaveReport writes the report into path, creating parent directories.
func SaveReport(path string, rep *Report, format string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // path comes from the user
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := WriteReport(f, rep, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeText(w io.Writer, rep *Report) error {
	var sb strings.Builder
	for _, it := range rep.Items {
		switch it.Status {
		case StatusConverted:
			fmt.Fprintf(&sb, "%s -> %s (%s", it.Input, it.Output, it.Orientation)
			if it.Strategy != "" {
				fmt.Fprintf(&sb, ", %s", it.Strategy)
			}
			if it.Branch != "" {
				fmt.Fprintf(&sb, ", %s", it.Branch)
			}
			sb.WriteString(")\n")
		case StatusSkipped:
			fmt.Fprintf(&sb, "%s skipped (%s)\n", it.Input, it.Orientation)
		case StatusFailed:
			fmt.Fprintf(&sb, "%s failed: %s\n", it.Input, it.Error)
		}
	}
	sb.WriteString(Describe(rep))
	if rep.Interrupted {
		sb.WriteString(" (interrupted)")
	}
	fmt.Fprintf(&sb, " in %v\n", rep.Duration.Round(time.Millisecond))
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	header := []string{"input", "output", "status", "orientation", "strategy", "branch", "width", "height", "duration_ms", "error"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, it := range rep.Items {
		record := []string{
			it.Input,
			it.Output,
			string(it.Status),
			it.Orientation,
			it.Strategy,
			it.Branch,
			strconv.Itoa(it.Width),
			strconv.Itoa(it.Height),
			strconv.FormatInt(it.Duration.Milliseconds(), 10),
			it.Error,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
