package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	FillRect(img, img.Bounds(), color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestExtractJPEGICC_NoProfile(t *testing.T) {
	assert.Nil(t, ExtractJPEGICC(encodeTestJPEG(t)))
	assert.Nil(t, ExtractJPEGICC([]byte("not a jpeg")))
	assert.Nil(t, ExtractJPEGICC(nil))
}

func TestInjectExtractRoundTrip(t *testing.T) {
	profile := bytes.Repeat([]byte("icc-profile-bytes"), 10)
	data := InjectJPEGICC(encodeTestJPEG(t), profile)

	assert.Equal(t, profile, ExtractJPEGICC(data))

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}

func TestInjectExtractMultiSegment(t *testing.T) {
	profile := make([]byte, maxSegmentData*2+100)
	for i := range profile {
		profile[i] = byte(i % 251)
	}
	data := InjectJPEGICC(encodeTestJPEG(t), profile)

	assert.Equal(t, 3, bytes.Count(data, iccSignature))
	assert.Equal(t, profile, ExtractJPEGICC(data))

	_, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestInjectJPEGICC_Passthrough(t *testing.T) {
	src := encodeTestJPEG(t)
	assert.Equal(t, src, InjectJPEGICC(src, nil))

	notJPEG := []byte{0x89, 'P', 'N', 'G'}
	assert.Equal(t, notJPEG, InjectJPEGICC(notJPEG, []byte("x")))
}
