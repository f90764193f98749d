// Package capture turns a live media session into single still-image
// payloads ready for transmission.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/irisauth/kiosk/pkg/media"
)

// DefaultQuality is the fixed JPEG quality factor for captured frames.
const DefaultQuality = 95

// ErrInvalidState is returned when a frame is requested from a session
// that is not Active.
var ErrInvalidState = errors.New("capture: media session not active")

// Frame is one captured still image. It is immutable once created and
// intended to be consumed by exactly one transmission.
type Frame struct {
	ID           string
	Width        int
	Height       int
	EncodedBytes []byte
	Timestamp    time.Time
}

// Source provides frames from a live camera session.
// *media.Session satisfies this.
type Source interface {
	State() media.State
	CaptureJPEG(quality int) (data []byte, width, height int, err error)
}

// Capturer produces frames from a Source at a fixed quality.
type Capturer struct {
	quality int
}

// New creates a Capturer. A quality outside 1-100 falls back to DefaultQuality.
func New(quality int) *Capturer {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Capturer{quality: quality}
}

// CaptureFrame takes a single snapshot of the session's live surface
// at its native resolution. The session must be Active; otherwise the
// call fails without touching the device. The operation is atomic: it
// returns a complete frame or an error, never a partial frame.
func (c *Capturer) CaptureFrame(src Source) (*Frame, error) {
	if st := src.State(); st != media.Active {
		return nil, fmt.Errorf("%w (session %s)", ErrInvalidState, st)
	}

	data, w, h, err := src.CaptureJPEG(c.quality)
	if err != nil {
		if errors.Is(err, media.ErrNotActive) {
			// Session released between the state check and the read.
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		return nil, fmt.Errorf("capture: %w", err)
	}

	return &Frame{
		ID:           uuid.New().String(),
		Width:        w,
		Height:       h,
		EncodedBytes: data,
		Timestamp:    time.Now(),
	}, nil
}
