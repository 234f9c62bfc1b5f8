package batch

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewBarProgress(&buf).WithWidth(10)

	p.Start(2)
	p.Advance(1, 2, "/in/a.jpg")
	p.Fail(2, "/in/b.jpg", errors.New("boom"))
	p.Advance(2, 2, "/in/b.jpg")
	p.Done()

	out := buf.String()
	assert.Contains(t, out, "widening 2 images")
	assert.Contains(t, out, "[##########] 2/2 b.jpg")
	assert.Contains(t, out, "[2] b.jpg: boom")
	assert.Contains(t, out, "done in")
}

func TestLogProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewLogProgress(logger, slog.LevelInfo).WithInterval(2)

	p.Start(3)
	p.Advance(1, 3, "a.jpg")
	p.Advance(2, 3, "b.jpg")
	p.Advance(3, 3, "c.jpg")
	p.Fail(3, "c.jpg", errors.New("bad"))
	p.Done()

	out := buf.String()
	assert.Contains(t, out, "Batch started")
	assert.NotContains(t, out, "last=a.jpg")
	assert.Contains(t, out, "last=b.jpg")
	assert.Contains(t, out, "last=c.jpg")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "Batch finished")
}

type countingProgress struct{ starts, advances, fails, dones int }

func (c *countingProgress) Start(int)                { c.starts++ }
func (c *countingProgress) Advance(int, int, string) { c.advances++ }
func (c *countingProgress) Fail(int, string, error)  { c.fails++ }
func (c *countingProgress) Done()                    { c.dones++ }

func TestMultiProgress(t *testing.T) {
	a, b := &countingProgress{}, &countingProgress{}
	m := MultiProgress{a, b}
	m.Start(1)
	m.Advance(1, 1, "x")
	m.Fail(1, "x", errors.New("e"))
	m.Done()

	for _, c := range []*countingProgress{a, b} {
		assert.Equal(t, countingProgress{1, 1, 1, 1}, *c)
	}
}

func TestNewProgress(t *testing.T) {
	p, err := NewProgress("bar", nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &BarProgress{}, p)

	p, err = NewProgress("LOG", nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogProgress{}, p)

	p, err = NewProgress("none", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, NoProgress{}, p)

	_, err = NewProgress("spinner", nil, nil)
	require.Error(t, err)
}
