package transport

import (
	"errors"
	"fmt"
)

// Sentinel errors for client misuse.
var (
	// ErrNoFrame is returned when Send is given a nil or empty frame.
	ErrNoFrame = errors.New("transport: no frame payload")

	// ErrUnknownFlow is returned when Send is given an unrecognized flow.
	ErrUnknownFlow = errors.New("transport: unknown flow kind")
)

// APIError is a structured error response from the remote service.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error text from the remote's "error" field.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("transport: remote error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport: remote error %d", e.StatusCode)
}
