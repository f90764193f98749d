package transport

// FlowKind names one of the three mutually exclusive remote capture
// operations.
type FlowKind string

const (
	// RegisterEnroll submits an iris capture during account registration,
	// before any user session exists.
	RegisterEnroll FlowKind = "register_enroll"

	// UserEnroll submits an iris capture for the logged-in user.
	UserEnroll FlowKind = "user_enroll"

	// Verify submits an iris capture for authentication.
	Verify FlowKind = "verify"
)

// Valid reports whether f is one of the known flows.
func (f FlowKind) Valid() bool {
	switch f {
	case RegisterEnroll, UserEnroll, Verify:
		return true
	}
	return false
}

// path is the fixed remote endpoint for the flow.
func (f FlowKind) path() string {
	switch f {
	case RegisterEnroll:
		return "/capture_iris_registration"
	case UserEnroll:
		return "/capture_iris"
	case Verify:
		return "/verify_iris"
	default:
		return ""
	}
}

// fallbackMessage is shown when the remote gives no usable error.
func (f FlowKind) fallbackMessage() string {
	if f == Verify {
		return "Authentication failed"
	}
	return "Failed to capture iris"
}
