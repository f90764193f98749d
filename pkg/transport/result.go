package transport

// Outcome is the terminal disposition of one flow invocation.
type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
)

// Result is produced once per Send and is terminal for that
// invocation. Message carries the remote's own text when available;
// on failure it falls back to a generic per-flow message.
type Result struct {
	Outcome Outcome  `json:"outcome"`
	Message string   `json:"message,omitempty"`
	Flow    FlowKind `json:"flow"`
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Outcome == Success
}

// failed builds a Failure result for flow, preferring msg over the
// flow's generic fallback.
func failed(flow FlowKind, msg string) Result {
	if msg == "" {
		msg = flow.fallbackMessage()
	}
	return Result{Outcome: Failure, Message: msg, Flow: flow}
}
