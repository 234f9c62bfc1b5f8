//go:build !gocv

package detector

import "errors"

const (
	gocvEnabled        = false
	defaultFaceBackend = BackendPigo
	defaultBodyBackend = BackendONNX
)

var errNoGoCV = errors.New("not linked; build with -tags=gocv")

func newHaarFaceDetector(HaarConfig) (FaceDetector, error) {
	return nil, unavailable(BackendHaar, errNoGoCV)
}

func newHOGBodyDetector(HOGConfig) (BodyDetector, error) {
	return nil, unavailable(BackendHOG, errNoGoCV)
}
