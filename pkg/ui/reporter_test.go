package ui_test

import (
	"testing"

	"github.com/irisauth/kiosk/pkg/media"
	"github.com/irisauth/kiosk/pkg/transport"
	"github.com/irisauth/kiosk/pkg/ui"
	"github.com/irisauth/kiosk/pkg/workflow"
)

func idleStatus() workflow.Status {
	return workflow.Status{Phase: workflow.Idle}
}

func allTriggers(v ui.StatusView) map[string]ui.ButtonState {
	return map[string]ui.ButtonState{
		"capture_register": v.Controls.CaptureRegister,
		"capture_enroll":   v.Controls.CaptureEnroll,
		"verify":           v.Controls.Verify,
	}
}

func TestProjectCameraGating(t *testing.T) {
	t.Run("no trigger enabled unless camera active", func(t *testing.T) {
		for _, st := range []media.State{
			media.Uninitialized, media.Acquiring, media.Failed, media.Released,
		} {
			view := ui.Project(st, nil, idleStatus())
			for name, btn := range allTriggers(view) {
				if btn.Enabled {
					t.Errorf("camera %s: %s enabled", st, name)
				}
			}
		}
	})

	t.Run("active camera enables triggers", func(t *testing.T) {
		view := ui.Project(media.Active, nil, idleStatus())
		for name, btn := range allTriggers(view) {
			if !btn.Enabled {
				t.Errorf("%s disabled with camera active", name)
			}
		}
	})

	t.Run("permission denied surfaces cause, controls stay disabled", func(t *testing.T) {
		view := ui.Project(media.Failed, media.ErrPermissionDenied, idleStatus())
		if view.CameraError == "" {
			t.Error("expected camera error to surface")
		}
		for name, btn := range allTriggers(view) {
			if btn.Enabled {
				t.Errorf("%s enabled after acquisition failure", name)
			}
		}
	})
}

func TestProjectBusyLocksTriggers(t *testing.T) {
	for _, phase := range []workflow.Phase{workflow.Capturing, workflow.Transmitting} {
		view := ui.Project(media.Active, nil, workflow.Status{Phase: phase})
		if !view.Busy {
			t.Errorf("phase %s: Busy = false", phase)
		}
		for name, btn := range allTriggers(view) {
			if btn.Enabled {
				t.Errorf("phase %s: %s enabled while busy", phase, name)
			}
		}
	}
}

func TestProjectSuccessEffects(t *testing.T) {
	t.Run("register enroll done unlocks account completion", func(t *testing.T) {
		snap := workflow.Status{Phase: workflow.Idle, RegisterEnrollDone: true}
		view := ui.Project(media.Active, nil, snap)

		if view.Controls.CaptureRegister.Enabled {
			t.Error("register capture still enabled after success")
		}
		if !view.Controls.CompleteRegistration.Enabled {
			t.Error("account completion not enabled after success")
		}

		// Projection is pure: rederiving from the same inputs is identical.
		again := ui.Project(media.Active, nil, snap)
		if view != again {
			t.Errorf("projection not stable: %+v vs %+v", view, again)
		}
	})

	t.Run("user enroll done disables its trigger", func(t *testing.T) {
		snap := workflow.Status{Phase: workflow.Idle, UserEnrollDone: true}
		view := ui.Project(media.Active, nil, snap)

		if view.Controls.CaptureEnroll.Enabled {
			t.Error("enroll capture still enabled after success")
		}
		if view.Controls.CaptureEnroll.Label != "Enrollment Complete" {
			t.Errorf("label = %q", view.Controls.CaptureEnroll.Label)
		}
		// Verify stays usable.
		if !view.Controls.Verify.Enabled {
			t.Error("verify disabled by enrollment completion")
		}
	})
}

func TestProjectStatusMessage(t *testing.T) {
	t.Run("no result, no message", func(t *testing.T) {
		view := ui.Project(media.Active, nil, idleStatus())
		if view.Message != "" {
			t.Errorf("message = %q, want empty", view.Message)
		}
	})

	t.Run("verify success", func(t *testing.T) {
		snap := workflow.Status{
			Phase: workflow.Idle,
			Last:  &transport.Result{Outcome: transport.Success, Flow: transport.Verify},
		}
		view := ui.Project(media.Active, nil, snap)
		if view.Message != "Authentication successful!" {
			t.Errorf("message = %q", view.Message)
		}
		if view.MessageKind != "success" {
			t.Errorf("kind = %q", view.MessageKind)
		}
	})

	t.Run("failure message passes through verbatim", func(t *testing.T) {
		snap := workflow.Status{
			Phase: workflow.Idle,
			Last: &transport.Result{
				Outcome: transport.Failure,
				Message: "no match",
				Flow:    transport.Verify,
			},
		}
		view := ui.Project(media.Active, nil, snap)
		if view.Message != "no match" {
			t.Errorf("message = %q, want %q", view.Message, "no match")
		}
		if view.MessageKind != "error" {
			t.Errorf("kind = %q", view.MessageKind)
		}
		// Failure does not lock the trigger.
		if !view.Controls.Verify.Enabled {
			t.Error("verify not re-triggerable after failure")
		}
	})

	t.Run("enroll success default message", func(t *testing.T) {
		snap := workflow.Status{
			Phase:          workflow.Idle,
			UserEnrollDone: true,
			Last:           &transport.Result{Outcome: transport.Success, Flow: transport.UserEnroll},
		}
		view := ui.Project(media.Active, nil, snap)
		if view.Message != "Iris captured successfully!" {
			t.Errorf("message = %q", view.Message)
		}
	})
}
