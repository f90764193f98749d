package media

import "sync"

// MockDevice implements Device for testing.
// All methods can be customized via function fields.
type MockDevice struct {
	// CaptureJPEGFunc is called when CaptureJPEG is invoked.
	// If nil, returns a small synthetic payload at 640x480.
	CaptureJPEGFunc func(quality int) ([]byte, int, int, error)

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu       sync.Mutex
	captures int
	closes   int
}

// CaptureJPEG calls CaptureJPEGFunc and records the call.
func (m *MockDevice) CaptureJPEG(quality int) ([]byte, int, int, error) {
	m.mu.Lock()
	m.captures++
	m.mu.Unlock()

	if m.CaptureJPEGFunc != nil {
		return m.CaptureJPEGFunc(quality)
	}
	return []byte{0xff, 0xd8, 0xff, 0xd9}, 640, 480, nil
}

// Close calls CloseFunc and records the call.
func (m *MockDevice) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Captures returns how many frames have been requested.
func (m *MockDevice) Captures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captures
}

// Closes returns how many times the device has been closed.
func (m *MockDevice) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// MockOpen returns an OpenFunc that yields dev, or err if non-nil.
func MockOpen(dev Device, err error) OpenFunc {
	return func(Constraints) (Device, error) {
		if err != nil {
			return nil, err
		}
		return dev, nil
	}
}
