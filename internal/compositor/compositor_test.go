package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/widen/internal/geometry"
	"github.com/MeKo-Tech/widen/internal/testutil"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallConfig keeps the 16:9 canvas but at a tenth of the size so pixel
// tests stay fast.
func smallConfig(residual Residual) Config {
	cfg := DefaultConfig()
	cfg.TargetWidth = 384
	cfg.TargetHeight = 216
	cfg.BlurRadius = 5
	cfg.Residual = residual
	return cfg
}

func newCompositor(t *testing.T, cfg Config) *Compositor {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestPlan_4K(t *testing.T) {
	c := newCompositor(t, DefaultConfig())

	l := c.Plan(1200)
	assert.Equal(t, BranchExtend, l.Branch)
	assert.Equal(t, 12, l.EdgeWidth)
	assert.Equal(t, 1320, l.LeftWidth)
	assert.Equal(t, 1320, l.RightWidth)
	assert.Equal(t, 1320, l.SourceX)
	assert.Equal(t, 3840, l.Total(3840))

	l = c.Plan(1201)
	assert.Equal(t, 1319, l.LeftWidth)
	assert.Equal(t, 1320, l.RightWidth, "odd remainder goes to the right panel")

	l = c.Plan(5000)
	assert.Equal(t, BranchCrop, l.Branch)
	assert.Equal(t, 580, l.CropX)

	assert.Equal(t, BranchExact, c.Plan(3840).Branch)
}

func TestPlan_OneColumnShort(t *testing.T) {
	l := newCompositor(t, DefaultConfig()).Plan(3839)
	assert.Equal(t, 0, l.LeftWidth)
	assert.Equal(t, 1, l.RightWidth)
	assert.Equal(t, 38, l.EdgeWidth)

	cfg := DefaultConfig()
	cfg.Residual = ResidualSeam
	l = newCompositor(t, cfg).Plan(3839)
	assert.Equal(t, 0, l.LeftWidth)
	assert.Equal(t, 0, l.RightWidth)
	assert.Equal(t, 3839, l.Total(3840))
}

func TestPlan_Property(t *testing.T) {
	properties := gopter.NewProperties(nil)
	stretch := newCompositor(t, DefaultConfig())
	seamCfg := DefaultConfig()
	seamCfg.Residual = ResidualSeam
	seam := newCompositor(t, seamCfg)

	properties.Property("narrow layouts cover the canvas within one column", prop.ForAll(
		func(w int) bool {
			ls := stretch.Plan(w)
			lm := seam.Plan(w)
			d := geometry.CanvasWidth - lm.Total(geometry.CanvasWidth)
			return ls.Total(geometry.CanvasWidth) == geometry.CanvasWidth &&
				d >= 0 && d <= 1 &&
				ls.EdgeWidth >= 1 && ls.EdgeWidth <= w
		},
		gen.IntRange(1, geometry.CanvasWidth-1),
	))

	properties.Property("wide layouts crop centered", prop.ForAll(
		func(w int) bool {
			l := stretch.Plan(w)
			left := l.CropX
			right := w - (l.CropX + geometry.CanvasWidth)
			return l.Branch == BranchCrop && right-left >= 0 && right-left <= 1
		},
		gen.IntRange(geometry.CanvasWidth+1, 20000),
	))

	properties.TestingRun(t)
}

func TestCompose_Extend(t *testing.T) {
	c := newCompositor(t, smallConfig(ResidualStretchRight))
	src := testutil.CreateGradientImage(100, 216)

	out, l, err := c.Compose(src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 384, 216), out.Bounds())
	assert.Equal(t, 142, l.SourceX)

	assert.Equal(t, src.At(0, 10), out.At(142, 10))
	assert.Equal(t, src.At(99, 10), out.At(241, 10))

	// The left panel is built from the green-heavy left edge, the right
	// panel from the red-heavy right edge.
	lr, lg, _, _ := out.At(70, 100).RGBA()
	rr, rg, _, _ := out.At(310, 100).RGBA()
	assert.Greater(t, lg, lr)
	assert.Greater(t, rr, rg)
}

func TestCompose_SeamLeavesBlackColumn(t *testing.T) {
	c := newCompositor(t, smallConfig(ResidualSeam))
	src := testutil.CreateTestImage(101, 216, color.White)

	out, l, err := c.Compose(src)
	require.NoError(t, err)
	assert.Equal(t, 141, l.LeftWidth)
	assert.Equal(t, 141, l.RightWidth)
	assert.Equal(t, color.NRGBA{A: 255}, out.(*image.NRGBA).NRGBAAt(383, 50))
	assert.NotEqual(t, color.NRGBA{A: 255}, out.(*image.NRGBA).NRGBAAt(382, 50))
}

func TestCompose_OneColumnShort(t *testing.T) {
	c := newCompositor(t, smallConfig(ResidualStretchRight))
	src := testutil.CreateTestImage(383, 216, color.White)

	out, l, err := c.Compose(src)
	require.NoError(t, err)
	assert.Equal(t, 0, l.LeftWidth)
	assert.Equal(t, 1, l.RightWidth)
	assert.Equal(t, 384, out.Bounds().Dx())
}

func TestCompose_Crop(t *testing.T) {
	c := newCompositor(t, smallConfig(ResidualStretchRight))
	src := testutil.CreateGradientImage(500, 216)

	out, l, err := c.Compose(src)
	require.NoError(t, err)
	assert.Equal(t, BranchCrop, l.Branch)
	assert.Equal(t, 58, l.CropX)
	assert.Equal(t, image.Rect(0, 0, 384, 216), out.Bounds())
	assert.Equal(t, src.At(58, 5), out.At(0, 5))
}

func TestCompose_ExactIsIdentity(t *testing.T) {
	c := newCompositor(t, smallConfig(ResidualStretchRight))
	src := testutil.CreateGradientImage(384, 216)

	out, l, err := c.Compose(src)
	require.NoError(t, err)
	assert.Equal(t, BranchExact, l.Branch)
	assert.Same(t, src, out)
}

func TestCompose_ResamplesHeight(t *testing.T) {
	c := newCompositor(t, smallConfig(ResidualStretchRight))

	out, l, err := c.Compose(testutil.CreateGradientImage(100, 300))
	require.NoError(t, err)
	assert.Equal(t, 100, l.SourceWidth)
	assert.Equal(t, image.Rect(0, 0, 384, 216), out.Bounds())
}

func TestCompose_ZeroArea(t *testing.T) {
	c := newCompositor(t, DefaultConfig())
	_, _, err := c.Compose(image.NewNRGBA(image.Rect(0, 0, 0, 10)))
	require.ErrorIs(t, err, geometry.ErrDegenerateGeometry)
}

func TestParseResidual(t *testing.T) {
	r, err := ParseResidual("SEAM")
	require.NoError(t, err)
	assert.Equal(t, ResidualSeam, r)

	r, err = ParseResidual("")
	require.NoError(t, err)
	assert.Equal(t, ResidualStretchRight, r)

	_, err = ParseResidual("mirror")
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.EdgePercent = 0
	require.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.TargetWidth = 0
	_, err := New(bad)
	require.Error(t, err)
}
