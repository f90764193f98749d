// Package workflow orchestrates one capture-and-transmit flow at a
// time: pull a frame from the media session, ship it to the remote
// service, and resolve the outcome. Re-entry while a flow is in flight
// is refused, so at most one invocation is ever capturing or
// transmitting.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/irisauth/kiosk/internal/log"
	"github.com/irisauth/kiosk/pkg/capture"
	"github.com/irisauth/kiosk/pkg/media"
	"github.com/irisauth/kiosk/pkg/transport"
)

// ErrBusy is returned when a trigger fires while a prior invocation
// has not yet resolved.
var ErrBusy = errors.New("workflow: capture already in flight")

// Phase is the workflow's position within one invocation.
type Phase int

const (
	Idle Phase = iota
	Capturing
	Transmitting
)

// String returns the phase name for logs and status payloads.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Transmitting:
		return "transmitting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Sender ships a frame to the remote operation for a flow.
// *transport.Client satisfies this.
type Sender interface {
	Send(ctx context.Context, flow transport.FlowKind, frame *capture.Frame) transport.Result
}

// Capturer produces one frame from a capture source.
// *capture.Capturer satisfies this.
type Capturer interface {
	CaptureFrame(src capture.Source) (*capture.Frame, error)
}

// Listener observes workflow progress. Callbacks run on the triggering
// goroutine and must return quickly.
type Listener interface {
	// PhaseChanged fires on every phase transition of an invocation.
	PhaseChanged(flow transport.FlowKind, phase Phase)

	// Resolved fires once per invocation with the terminal result.
	Resolved(result transport.Result)
}

// Status is a point-in-time snapshot of workflow state for projection.
type Status struct {
	Phase              Phase                                   `json:"-"`
	PhaseName          string                                  `json:"phase"`
	ActiveFlow         transport.FlowKind                      `json:"active_flow,omitempty"`
	Last               *transport.Result                       `json:"last,omitempty"`
	LastResults        map[transport.FlowKind]transport.Result `json:"last_results"`
	RegisterEnrollDone bool                                    `json:"register_enroll_done"`
	UserEnrollDone     bool                                    `json:"user_enroll_done"`
}

// Workflow drives the three capture flows against one media session.
type Workflow struct {
	session  *media.Session
	capturer Capturer
	sender   Sender

	navigate func()
	navDelay time.Duration
	listener Listener

	mu         sync.Mutex
	phase      Phase
	activeFlow transport.FlowKind
	last       *transport.Result
	results    map[transport.FlowKind]transport.Result

	// Sticky post-success effects. Once set they are never cleared
	// for the lifetime of this workflow.
	registerEnrollDone bool
	userEnrollDone     bool
}

// Option is a functional option for configuring the workflow.
type Option func(*Workflow)

// WithNavigator sets the deferred navigation fired after a successful
// verification. Without one, verify success has no navigation effect.
func WithNavigator(delay time.Duration, navigate func()) Option {
	return func(w *Workflow) {
		w.navDelay = delay
		w.navigate = navigate
	}
}

// WithListener sets the progress observer.
func WithListener(l Listener) Option {
	return func(w *Workflow) { w.listener = l }
}

// New creates a workflow over session, capturing with capturer and
// transmitting with sender.
func New(session *media.Session, capturer Capturer, sender Sender, opts ...Option) *Workflow {
	w := &Workflow{
		session:  session,
		capturer: capturer,
		sender:   sender,
		results:  make(map[transport.FlowKind]transport.Result),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Session returns the media session the workflow captures from.
func (w *Workflow) Session() *media.Session {
	return w.session
}

// Trigger runs one invocation of flow to its terminal result. If a
// prior invocation has not resolved, the trigger is refused with
// ErrBusy and no capture is attempted. All other failure modes resolve
// to a Failure result, never an error.
func (w *Workflow) Trigger(ctx context.Context, flow transport.FlowKind) (transport.Result, error) {
	w.mu.Lock()
	if w.phase != Idle {
		w.mu.Unlock()
		log.Debug("trigger ignored while busy", "flow", string(flow))
		return transport.Result{}, ErrBusy
	}
	w.phase = Capturing
	w.activeFlow = flow
	w.mu.Unlock()
	w.notifyPhase(flow, Capturing)

	frame, err := w.capturer.CaptureFrame(w.session)
	if err != nil {
		msg := "Failed to capture frame"
		if errors.Is(err, capture.ErrInvalidState) {
			msg = "Camera is not active. Please allow camera access and try again."
		}
		log.Warn("capture failed", "flow", string(flow), "err", err)
		return w.resolve(transport.Result{
			Outcome: transport.Failure,
			Message: msg,
			Flow:    flow,
		}), nil
	}

	w.setPhase(flow, Transmitting)

	// The transport folds its own failures into the result; adopt it
	// verbatim. The frame is consumed here either way: a transmit
	// failure means a fresh capture on the next trigger.
	result := w.sender.Send(ctx, flow, frame)
	return w.resolve(result), nil
}

// resolve records the terminal result, applies per-flow success
// effects, and returns the workflow to Idle for the next trigger.
func (w *Workflow) resolve(result transport.Result) transport.Result {
	w.mu.Lock()
	w.results[result.Flow] = result
	w.last = &result
	if result.OK() {
		switch result.Flow {
		case transport.RegisterEnroll:
			w.registerEnrollDone = true
		case transport.UserEnroll:
			w.userEnrollDone = true
		}
	}
	scheduleNav := result.OK() && result.Flow == transport.Verify && w.navigate != nil
	w.phase = Idle
	w.activeFlow = ""
	w.mu.Unlock()

	if scheduleNav {
		time.AfterFunc(w.navDelay, w.navigate)
	}

	log.Info("flow resolved", "flow", string(result.Flow),
		"outcome", string(result.Outcome), "message", result.Message)
	if w.listener != nil {
		w.listener.Resolved(result)
	}
	w.notifyPhase(result.Flow, Idle)
	return result
}

func (w *Workflow) setPhase(flow transport.FlowKind, p Phase) {
	w.mu.Lock()
	w.phase = p
	w.mu.Unlock()
	w.notifyPhase(flow, p)
}

func (w *Workflow) notifyPhase(flow transport.FlowKind, p Phase) {
	if w.listener != nil {
		w.listener.PhaseChanged(flow, p)
	}
}

// Snapshot returns a copy of the current workflow state.
func (w *Workflow) Snapshot() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	results := make(map[transport.FlowKind]transport.Result, len(w.results))
	for k, v := range w.results {
		results[k] = v
	}
	var last *transport.Result
	if w.last != nil {
		r := *w.last
		last = &r
	}
	return Status{
		Phase:              w.phase,
		PhaseName:          w.phase.String(),
		ActiveFlow:         w.activeFlow,
		Last:               last,
		LastResults:        results,
		RegisterEnrollDone: w.registerEnrollDone,
		UserEnrollDone:     w.userEnrollDone,
	}
}
