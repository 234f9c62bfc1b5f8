package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Output formats understood by EncodeImage.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif", ".webp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path        string
	Format      string
	SizeBytes   int64
	Width       int
	Height      int
	AspectRatio float64
	// ICCProfile is the embedded color profile, nil when absent.
	ICCProfile []byte
}

// LoadImage opens and decodes an image file, returning the image and metadata.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		err := &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
		return nil, ImageMetadata{}, err
	}
	if !IsSupportedImage(path) {
		err := &ImageProcessingError{Operation: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
		return nil, ImageMetadata{}, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}

	img, meta, err := DecodeImage(data)
	if err != nil {
		return nil, ImageMetadata{}, err
	}
	meta.Path = path
	return img, meta, nil
}

// DecodeImage decodes an in-memory image and extracts its metadata.
func DecodeImage(data []byte) (image.Image, ImageMetadata, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: err}
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: errors.New("empty image")}
	}

	meta := ImageMetadata{
		Format:      format,
		SizeBytes:   int64(len(data)),
		Width:       b.Dx(),
		Height:      b.Dy(),
		AspectRatio: float64(b.Dx()) / float64(b.Dy()),
	}
	if format == FormatJPEG {
		meta.ICCProfile = ExtractJPEGICC(data)
	}
	return img, meta, nil
}

// EncodeOptions controls how an output image is serialized.
type EncodeOptions struct {
	Format  string
	Quality int
	// ICCProfile is reattached to JPEG output unchanged.
	ICCProfile []byte
}

// EncodeImage writes img to w in the requested format.
func EncodeImage(w io.Writer, img image.Image, opts EncodeOptions) error {
	switch strings.ToLower(opts.Format) {
	case FormatJPEG, "jpg", "":
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
			return &ImageProcessingError{Operation: "encode", Err: err}
		}
		data := buf.Bytes()
		if len(opts.ICCProfile) > 0 {
			data = InjectJPEGICC(data, opts.ICCProfile)
		}
		if _, err := w.Write(data); err != nil {
			return &ImageProcessingError{Operation: "encode", Err: err}
		}
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return &ImageProcessingError{Operation: "encode", Err: err}
		}
	case FormatWebP:
		if err := webp.Encode(w, img, &webp.Options{Quality: float32(opts.Quality)}); err != nil {
			return &ImageProcessingError{Operation: "encode", Err: err}
		}
	default:
		return &ImageProcessingError{Operation: "encode", Err: fmt.Errorf("unsupported output format: %s", opts.Format)}
	}
	return nil
}

// ExtensionFor returns the file extension used for an output format.
func ExtensionFor(format string) string {
	switch strings.ToLower(format) {
	case FormatPNG:
		return ".png"
	case FormatWebP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// SaveImage encodes img into a temporary file next to path and renames it
// into place, so a failed encode never leaves a partial output behind.
func SaveImage(img image.Image, path string, opts EncodeOptions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op after a successful rename
	}()

	if err := EncodeImage(tmp, img, opts); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	return nil
}

// ValidateImageConstraints checks dimensions against the provided constraints.
func ValidateImageConstraints(img image.Image, constraints ImageConstraints) error {
	if img == nil {
		return &ImageProcessingError{Operation: "validate", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < constraints.MinWidth || h < constraints.MinHeight {
		return &ImageProcessingError{
			Operation: "validate",
			Err: fmt.Errorf(
				"image too small: %dx%d < %dx%d",
				w, h, constraints.MinWidth, constraints.MinHeight,
			),
		}
	}
	return nil
}
