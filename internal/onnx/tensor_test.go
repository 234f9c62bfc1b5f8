package onnx

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageTensorAndVerify(t *testing.T) {
	c, h, w := 3, 4, 5
	ten, err := NewImageTensor(make([]float32, c*h*w), c, h, w)
	require.NoError(t, err)
	require.NoError(t, ValidateNCHW(ten.Shape))
	require.NoError(t, VerifyImageTensor(ten))
}

func TestNewImageTensorErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []float32
		wantErr bool
	}{
		{name: "nil data", data: nil, wantErr: true},
		{name: "data too short", data: make([]float32, 10), wantErr: true},
		{name: "data too long", data: make([]float32, 100), wantErr: true},
		{name: "valid data", data: make([]float32, 60), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImageTensor(tt.data, 3, 4, 5)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestValidateNCHW(t *testing.T) {
	require.Error(t, ValidateNCHW([]int64{1, 3, 4}))
	require.Error(t, ValidateNCHW([]int64{1, 3, 0, 4}))
	require.Error(t, VerifyImageTensor(Tensor{Data: make([]float32, 3), Shape: []int64{1, 1, 2, 2}}))
}

func TestLetterboxTensor(t *testing.T) {
	img := imaging.New(200, 100, color.NRGBA{R: 255, A: 255})

	ten, lb, err := LetterboxTensor(img, 64)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 64, 64}, ten.Shape)
	assert.InDelta(t, 0.32, lb.Scale, 1e-9)
	assert.Equal(t, 0, lb.PadX)
	assert.Equal(t, 16, lb.PadY)

	plane := 64 * 64
	assert.InDelta(t, 114.0/255, ten.Data[0], 1e-6, "top rows are padding")
	assert.InDelta(t, 1.0, ten.Data[32*64+32], 0.01, "red channel inside the image")
	assert.InDelta(t, 0.0, ten.Data[plane+32*64+32], 0.01, "green channel inside the image")

	ten.Release()
	assert.Nil(t, ten.Data)
}

func TestLetterboxTensor_PooledBufferIsOverwritten(t *testing.T) {
	first, _, err := LetterboxTensor(imaging.New(64, 64, color.NRGBA{R: 255, G: 255, B: 255, A: 255}), 64)
	require.NoError(t, err)
	first.Release()

	second, _, err := LetterboxTensor(imaging.New(64, 64, color.NRGBA{A: 255}), 64)
	require.NoError(t, err)
	defer second.Release()
	for _, v := range second.Data {
		require.InDelta(t, 0.0, v, 1e-6)
	}
}

func TestLetterboxToSource(t *testing.T) {
	lb := Letterbox{Size: 64, Scale: 0.32, PadX: 0, PadY: 16}
	bounds := image.Rect(0, 0, 200, 100)

	r := lb.ToSource(32, 32, 32, 16, bounds)
	assert.Equal(t, image.Rect(50, 25, 150, 75), r)

	clipped := lb.ToSource(60, 32, 32, 64, bounds)
	assert.True(t, clipped.In(bounds))
}

func TestLetterboxTensor_Empty(t *testing.T) {
	_, _, err := LetterboxTensor(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 64)
	require.Error(t, err)
}
