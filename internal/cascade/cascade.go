// Package cascade decides where a 16:9 window is cut out of a landscape
// frame. Strategies are tried in order and the first one that proposes an
// anchor wins; the center strategy always answers, so a decision is always
// made.
package cascade

import (
	"errors"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/widen/internal/detector"
	"github.com/MeKo-Tech/widen/internal/geometry"
	"github.com/MeKo-Tech/widen/internal/utils"
)

// Frame is the image a strategy inspects, with the window height fixed at
// cascade entry.
type Frame struct {
	Image        *image.NRGBA
	TargetHeight int
}

// Width returns the frame width.
func (f Frame) Width() int { return f.Image.Bounds().Dx() }

// Height returns the frame height.
func (f Frame) Height() int { return f.Image.Bounds().Dy() }

// Strategy proposes the top row of the crop window. ok=false means the
// strategy has no opinion; an error is logged and treated the same way.
type Strategy interface {
	Name() string
	Anchor(f Frame) (int, bool, error)
}

// Outcome classifies one strategy attempt.
type Outcome string

const (
	OutcomeHit         Outcome = "hit"
	OutcomeMiss        Outcome = "miss"
	OutcomeError       Outcome = "error"
	OutcomeUnavailable Outcome = "unavailable"
)

// Observer receives every strategy attempt, for metrics.
type Observer interface {
	ObserveStrategy(strategy string, outcome Outcome)
}

// Decision is the crop chosen for one frame.
type Decision struct {
	CropY        int
	TargetHeight int
	Width        int
	Strategy     string
	// Proposed is the strategy's anchor before clamping.
	Proposed int
}

// Window returns the crop rectangle relative to the frame origin.
func (d Decision) Window() image.Rectangle {
	return image.Rect(0, d.CropY, d.Width, d.CropY+d.TargetHeight)
}

// Cascade runs strategies in order.
type Cascade struct {
	strategies []Strategy
	observer   Observer
	logger     *slog.Logger
}

// Option configures a Cascade.
type Option func(*Cascade)

// WithObserver reports strategy outcomes to o.
func WithObserver(o Observer) Option {
	return func(c *Cascade) { c.observer = o }
}

// WithLogger sets the logger used for strategy tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cascade) { c.logger = l }
}

// New builds a cascade. A center strategy is appended when none is present.
func New(strategies []Strategy, opts ...Option) *Cascade {
	hasCenter := false
	for _, s := range strategies {
		if s.Name() == NameCenter {
			hasCenter = true
		}
	}
	list := append([]Strategy(nil), strategies...)
	if !hasCenter {
		list = append(list, CenterStrategy{})
	}

	c := &Cascade{strategies: list, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Strategies returns the strategy names in evaluation order.
func (c *Cascade) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Decide runs the cascade on img. It never fails: the returned CropY is
// always inside [0, max(0, H-TargetHeight)].
func (c *Cascade) Decide(img image.Image) Decision {
	frame := Frame{Image: utils.ToNRGBA(img)}
	frame.TargetHeight = geometry.TargetHeight(frame.Width())

	d := Decision{TargetHeight: frame.TargetHeight, Width: frame.Width()}
	for _, s := range c.strategies {
		y, ok := c.try(s, frame)
		if !ok {
			continue
		}
		d.Proposed = y
		d.CropY = geometry.ClampAnchor(y, frame.Height(), frame.TargetHeight)
		d.Strategy = s.Name()
		c.logger.Debug("Crop strategy selected",
			"strategy", d.Strategy, "proposed", y, "crop_y", d.CropY,
			"target_height", d.TargetHeight)
		return d
	}

	d.CropY = geometry.ClampAnchor((frame.Height()-frame.TargetHeight)/2, frame.Height(), frame.TargetHeight)
	d.Proposed = d.CropY
	d.Strategy = NameCenter
	return d
}

func (c *Cascade) try(s Strategy, f Frame) (y int, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			y, ok = 0, false
			c.logger.Error("Crop strategy panicked", "strategy", s.Name(), "panic", r)
			c.observe(s.Name(), OutcomeError)
		}
	}()

	y, ok, err := s.Anchor(f)
	switch {
	case errors.Is(err, detector.ErrDetectorUnavailable):
		c.logger.Debug("Crop strategy unavailable", "strategy", s.Name(), "error", err)
		c.observe(s.Name(), OutcomeUnavailable)
		return 0, false
	case err != nil:
		c.logger.Warn("Crop strategy failed", "strategy", s.Name(), "error", err)
		c.observe(s.Name(), OutcomeError)
		return 0, false
	case !ok:
		c.logger.Debug("Crop strategy found nothing", "strategy", s.Name())
		c.observe(s.Name(), OutcomeMiss)
		return 0, false
	}
	c.observe(s.Name(), OutcomeHit)
	return y, true
}

func (c *Cascade) observe(name string, o Outcome) {
	if c.observer != nil {
		c.observer.ObserveStrategy(name, o)
	}
}
