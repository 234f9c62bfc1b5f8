package onnx

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/MeKo-Tech/widen/internal/mempool"
	"github.com/disintegration/imaging"
)

// Tensor represents a simple float32 tensor prepared for ONNX input.
// Data layout is row-major, with NCHW for images.
type Tensor struct {
	Data  []float32
	Shape []int64 // e.g., [N, C, H, W]
}

// Release returns pooled tensor data. The tensor must not be used afterwards.
func (t *Tensor) Release() {
	mempool.PutFloat32(t.Data)
	t.Data = nil
}

// NewImageTensor builds a single-image tensor with shape [1, C, H, W].
// data must be length C*H*W in NCHW order.
func NewImageTensor(data []float32, c, h, w int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	expected := c * h * w
	if len(data) != expected {
		return Tensor{}, fmt.Errorf("unexpected data length: got %d, want %d", len(data), expected)
	}
	shape := []int64{1, int64(c), int64(h), int64(w)}
	return Tensor{Data: data, Shape: shape}, nil
}

// ValidateNCHW ensures a shape is [N, C, H, W] with positive dimensions.
func ValidateNCHW(shape []int64) error {
	if len(shape) != 4 {
		return fmt.Errorf("shape rank %d != 4", len(shape))
	}
	for i, v := range shape {
		if v <= 0 {
			return fmt.Errorf("dimension %d must be > 0, got %d", i, v)
		}
	}
	return nil
}

// VerifyImageTensor checks data length matches the provided NCHW shape.
func VerifyImageTensor(t Tensor) error {
	if err := ValidateNCHW(t.Shape); err != nil {
		return err
	}
	n, c, h, w := t.Shape[0], t.Shape[1], t.Shape[2], t.Shape[3]
	expected := int(n * c * h * w)
	if len(t.Data) != expected {
		return fmt.Errorf("tensor data length %d != expected %d for shape %v", len(t.Data), expected, t.Shape)
	}
	return nil
}

// Letterbox records how a source image was fitted into a square model input.
type Letterbox struct {
	Size  int
	Scale float64
	PadX  int
	PadY  int
}

// ToSource maps a center-format box in model input coordinates back to the
// source image, clipped to bounds.
func (l Letterbox) ToSource(cx, cy, w, h float32, bounds image.Rectangle) image.Rectangle {
	x0 := (float64(cx-w/2) - float64(l.PadX)) / l.Scale
	y0 := (float64(cy-h/2) - float64(l.PadY)) / l.Scale
	x1 := (float64(cx+w/2) - float64(l.PadX)) / l.Scale
	y1 := (float64(cy+h/2) - float64(l.PadY)) / l.Scale
	r := image.Rect(int(x0+0.5), int(y0+0.5), int(x1+0.5), int(y1+0.5))
	return r.Add(bounds.Min).Intersect(bounds)
}

var letterboxFill = color.NRGBA{R: 114, G: 114, B: 114, A: 255}

// LetterboxTensor scales img to fit a size x size square, pads the rest with
// neutral gray and returns it as a [1, 3, size, size] tensor in [0, 1].
func LetterboxTensor(img image.Image, size int) (Tensor, Letterbox, error) {
	b := img.Bounds()
	if b.Empty() || size <= 0 {
		return Tensor{}, Letterbox{}, fmt.Errorf("cannot letterbox %dx%d into %d", b.Dx(), b.Dy(), size)
	}

	scale := min(float64(size)/float64(b.Dx()), float64(size)/float64(b.Dy()))
	nw := max(1, min(size, int(float64(b.Dx())*scale+0.5)))
	nh := max(1, min(size, int(float64(b.Dy())*scale+0.5)))
	lb := Letterbox{Size: size, Scale: scale, PadX: (size - nw) / 2, PadY: (size - nh) / 2}

	resized := imaging.Resize(img, nw, nh, imaging.Linear)
	canvas := imaging.Paste(imaging.New(size, size, letterboxFill), resized, image.Pt(lb.PadX, lb.PadY))

	plane := size * size
	data := mempool.GetFloat32(3 * plane)
	for y := range size {
		for x := range size {
			i := canvas.PixOffset(x, y)
			p := y*size + x
			data[p] = float32(canvas.Pix[i]) / 255
			data[plane+p] = float32(canvas.Pix[i+1]) / 255
			data[2*plane+p] = float32(canvas.Pix[i+2]) / 255
		}
	}

	t, err := NewImageTensor(data, 3, size, size)
	if err != nil {
		mempool.PutFloat32(data)
		return Tensor{}, Letterbox{}, err
	}
	return t, lb, nil
}
