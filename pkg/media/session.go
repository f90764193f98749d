// Package media owns the camera device lifecycle. A Session wraps one
// camera handle with an explicit acquire/release state machine; frames
// are read only while the session is Active.
package media

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/irisauth/kiosk/internal/log"
)

// State is the lifecycle state of a Session.
type State int

const (
	Uninitialized State = iota
	Acquiring
	Active
	Failed
	Released
)

// String returns the state name for logs and status payloads.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Acquiring:
		return "acquiring"
	case Active:
		return "active"
	case Failed:
		return "failed"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Constraints describe the camera device to acquire.
type Constraints struct {
	DeviceID   int
	Width      int
	Height     int
	FacingMode string
}

// Device is the camera hardware behind a Session.
type Device interface {
	// CaptureJPEG grabs one frame at the device's native resolution
	// (which may differ from the requested constraints) and encodes it
	// as JPEG at the given quality (1-100).
	CaptureJPEG(quality int) (data []byte, width, height int, err error)

	// Close stops the device and releases the handle.
	Close() error
}

// OpenFunc opens a camera device matching the constraints.
type OpenFunc func(Constraints) (Device, error)

// Session owns at most one camera device handle. All methods are safe
// for concurrent use; the mutex is held across frame reads so a
// Release cannot pull the device out from under an in-flight capture.
type Session struct {
	mu     sync.Mutex
	id     string
	open   OpenFunc
	state  State
	device Device
	cause  error // acquisition failure, set while state == Failed
}

// NewSession creates a session that opens devices with open.
// The session starts Uninitialized; no hardware is touched until Acquire.
func NewSession(open OpenFunc) *Session {
	return &Session{
		id:   uuid.New().String(),
		open: open,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Failure returns the acquisition error when the session is Failed, else nil.
func (s *Session) Failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Failed {
		return s.cause
	}
	return nil
}

// Acquire opens a camera device matching c. On success the session is
// Active and streaming. On failure the session is Failed and the cause
// is reported once; a later Acquire is a fresh attempt. Acquire on an
// Active session is a no-op.
func (s *Session) Acquire(c Constraints) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Active {
		return nil
	}

	s.state = Acquiring
	s.cause = nil

	dev, err := s.open(c)
	if err != nil {
		s.state = Failed
		s.cause = err
		log.Warn("camera acquire failed", "session", s.id, "err", err)
		return err
	}

	s.device = dev
	s.state = Active
	log.Info("camera acquired", "session", s.id,
		"device", c.DeviceID, "width", c.Width, "height", c.Height)
	return nil
}

// Release stops the device and moves the session to Released. It is
// idempotent and safe from any state; device close errors are logged,
// never returned, so teardown can always proceed.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		if err := s.device.Close(); err != nil {
			log.Warn("camera release", "session", s.id, "err", err)
		}
		s.device = nil
	}
	if s.state != Released {
		log.Debug("camera released", "session", s.id, "from", s.state.String())
	}
	s.state = Released
	s.cause = nil
}

// CaptureJPEG reads one frame from the live device. The session must
// be Active; otherwise ErrNotActive is returned and no device call is
// made.
func (s *Session) CaptureJPEG(quality int) ([]byte, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Active || s.device == nil {
		return nil, 0, 0, fmt.Errorf("%w (state %s)", ErrNotActive, s.state)
	}
	return s.device.CaptureJPEG(quality)
}
