// Package ui projects workflow and camera state onto the user-visible
// dashboard. The projection is a pure function: control state is
// always rederived from (camera state, last workflow result), never
// mutated independently.
package ui

import (
	"github.com/irisauth/kiosk/pkg/media"
	"github.com/irisauth/kiosk/pkg/transport"
	"github.com/irisauth/kiosk/pkg/workflow"
)

// ButtonState is derived control state for one dashboard control.
type ButtonState struct {
	Enabled    bool   `json:"enabled"`
	Label      string `json:"label"`
	StyleClass string `json:"style_class"`
}

// Controls holds the derived state of every dashboard control.
type Controls struct {
	CaptureRegister      ButtonState `json:"capture_register"`
	CaptureEnroll        ButtonState `json:"capture_enroll"`
	Verify               ButtonState `json:"verify"`
	CompleteRegistration ButtonState `json:"complete_registration"`
}

// StatusView is the full user-visible projection pushed to the dashboard.
type StatusView struct {
	Camera      string   `json:"camera"`
	CameraError string   `json:"camera_error,omitempty"`
	Busy        bool     `json:"busy"`
	Message     string   `json:"message,omitempty"`
	MessageKind string   `json:"message_kind,omitempty"`
	Controls    Controls `json:"controls"`
}

// Project derives the dashboard view from the camera state, its
// failure cause (nil unless Failed), and a workflow snapshot.
func Project(cam media.State, camErr error, snap workflow.Status) StatusView {
	view := StatusView{
		Camera: cam.String(),
		Busy:   snap.Phase != workflow.Idle,
	}
	if camErr != nil {
		view.CameraError = camErr.Error()
	}

	// No control may be enabled unless the camera is streaming, and
	// triggering controls lock while an invocation is in flight.
	ready := cam == media.Active && !view.Busy

	view.Controls.CaptureRegister = ButtonState{
		Enabled:    ready && !snap.RegisterEnrollDone,
		Label:      "Capture Iris",
		StyleClass: "primary",
	}
	if snap.RegisterEnrollDone {
		view.Controls.CaptureRegister.Label = "Iris Captured"
		view.Controls.CaptureRegister.StyleClass = "success"
	}

	view.Controls.CaptureEnroll = ButtonState{
		Enabled:    ready && !snap.UserEnrollDone,
		Label:      "Capture Iris",
		StyleClass: "primary",
	}
	if snap.UserEnrollDone {
		view.Controls.CaptureEnroll.Label = "Enrollment Complete"
		view.Controls.CaptureEnroll.StyleClass = "success"
	}

	view.Controls.Verify = ButtonState{
		Enabled:    ready,
		Label:      "Verify Iris",
		StyleClass: "primary",
	}

	// Completing registration only unlocks once the registration-time
	// enrollment has been accepted. It does not need the camera.
	view.Controls.CompleteRegistration = ButtonState{
		Enabled:    snap.RegisterEnrollDone,
		Label:      "Create Account",
		StyleClass: "primary",
	}

	view.Message, view.MessageKind = statusMessage(snap.Last)
	return view
}

// statusMessage renders the latest terminal outcome as exactly one
// user-facing status line.
func statusMessage(last *transport.Result) (string, string) {
	if last == nil {
		return "", ""
	}
	if !last.OK() {
		return last.Message, "error"
	}
	switch last.Flow {
	case transport.Verify:
		return "Authentication successful!", "success"
	default:
		if last.Message != "" {
			return last.Message, "success"
		}
		return "Iris captured successfully!", "success"
	}
}
