package camera

import "errors"

var (
	// ErrNotReady indicates an image was requested before any snap.
	ErrNotReady = errors.New("camera: snap an image before reading it")

	ErrInvalidTiming   = errors.New("camera: timing must be positive")
	ErrInvalidExposure = errors.New("camera: exposure must be positive")
	ErrUnknownChannel  = errors.New("camera: unknown channel")
	ErrNoGenerator     = errors.New("camera: no image generator")
)
