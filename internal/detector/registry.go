package detector

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// BackendStatus describes one slot of the registry.
type BackendStatus struct {
	Role      string
	Backend   string
	Available bool
	Err       error
}

// Registry owns the initialized face and body backends of one run. It is
// built once, before the first image, and only read afterwards.
type Registry struct {
	face        FaceDetector
	body        BodyDetector
	faceBackend string
	bodyBackend string
	faceErr     error
	bodyErr     error
}

// NewRegistry initializes the configured backends. Initialization failures
// do not fail construction; they are kept and reported by Face and Body as
// ErrDetectorUnavailable so the cascade can fall through.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		faceBackend: cfg.faceBackend(),
		bodyBackend: cfg.bodyBackend(),
	}

	switch r.faceBackend {
	case BackendPigo:
		d, err := NewPigoFaceDetector(cfg.Pigo)
		r.setFace(d, err)
	case BackendHaar:
		d, err := newHaarFaceDetector(cfg.Haar)
		r.setFace(d, err)
	case BackendNone:
		r.faceErr = unavailable(BackendNone, errors.New("face detection disabled"))
	default:
		r.faceErr = unavailable(r.faceBackend, errors.New("unknown backend"))
	}

	switch r.bodyBackend {
	case BackendONNX:
		d, err := NewONNXBodyDetector(cfg.ONNX)
		r.setBody(d, err)
	case BackendHOG:
		d, err := newHOGBodyDetector(cfg.HOG)
		r.setBody(d, err)
	case BackendNone:
		r.bodyErr = unavailable(BackendNone, errors.New("body detection disabled"))
	default:
		r.bodyErr = unavailable(r.bodyBackend, errors.New("unknown backend"))
	}

	for _, s := range r.Status() {
		if s.Available {
			slog.Debug("Detector backend ready", "role", s.Role, "backend", s.Backend)
		} else {
			slog.Warn("Detector backend unavailable", "role", s.Role, "backend", s.Backend, "error", s.Err)
		}
	}
	return r
}

// NewRegistryWith wraps already constructed detectors. A nil detector is
// reported as unavailable.
func NewRegistryWith(face FaceDetector, body BodyDetector) *Registry {
	r := &Registry{}
	if face != nil {
		r.face, r.faceBackend = face, face.Name()
	} else {
		r.faceBackend = BackendNone
		r.faceErr = unavailable(BackendNone, errors.New("no face detector"))
	}
	if body != nil {
		r.body, r.bodyBackend = body, body.Name()
	} else {
		r.bodyBackend = BackendNone
		r.bodyErr = unavailable(BackendNone, errors.New("no body detector"))
	}
	return r
}

func (r *Registry) setFace(d FaceDetector, err error) {
	if err != nil {
		if !errors.Is(err, ErrDetectorUnavailable) {
			err = unavailable(r.faceBackend, err)
		}
		r.faceErr = err
		return
	}
	r.face = d
}

func (r *Registry) setBody(d BodyDetector, err error) {
	if err != nil {
		if !errors.Is(err, ErrDetectorUnavailable) {
			err = unavailable(r.bodyBackend, err)
		}
		r.bodyErr = err
		return
	}
	r.body = d
}

// Face returns the face detector or an ErrDetectorUnavailable error.
func (r *Registry) Face() (FaceDetector, error) {
	if r.face == nil {
		return nil, r.faceErr
	}
	return r.face, nil
}

// Body returns the body detector or an ErrDetectorUnavailable error.
func (r *Registry) Body() (BodyDetector, error) {
	if r.body == nil {
		return nil, r.bodyErr
	}
	return r.body, nil
}

// Status reports the state of both backends.
func (r *Registry) Status() []BackendStatus {
	return []BackendStatus{
		{Role: "face", Backend: r.faceBackend, Available: r.face != nil, Err: r.faceErr},
		{Role: "body", Backend: r.bodyBackend, Available: r.body != nil, Err: r.bodyErr},
	}
}

// Close releases backends that hold native resources.
func (r *Registry) Close() error {
	var errs []error
	for _, d := range []any{r.face, r.body} {
		if c, ok := d.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	r.face, r.body = nil, nil
	if r.faceErr == nil {
		r.faceErr = unavailable(r.faceBackend, errors.New("registry closed"))
	}
	if r.bodyErr == nil {
		r.bodyErr = unavailable(r.bodyBackend, errors.New("registry closed"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close detectors: %w", errors.Join(errs...))
	}
	return nil
}
