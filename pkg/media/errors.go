package media

import "errors"

// Sentinel errors for camera acquisition and use.
var (
	// ErrNoDevice is returned when no camera device matches the constraints.
	ErrNoDevice = errors.New("media: no camera device available")

	// ErrPermissionDenied is returned when the camera exists but access is refused.
	ErrPermissionDenied = errors.New("media: camera permission denied")

	// ErrConstraints is returned when the device cannot satisfy the requested constraints.
	ErrConstraints = errors.New("media: camera constraints unsatisfiable")

	// ErrNotActive is returned when a frame is requested from a session
	// that is not streaming.
	ErrNotActive = errors.New("media: session not active")
)
