package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/coachsite/booking-widget/internal/observability/metrics"
	"github.com/coachsite/booking-widget/pkg/logging"
)

// DefaultDisplayTimeout is how long a terminal status stays visible
// before reverting to idle.
const DefaultDisplayTimeout = 5 * time.Second

var submitTracer = otel.Tracer("bookingwidget.internal.booking")

// StatusKind is the submission lifecycle state.
type StatusKind string

const (
	StatusIdle       StatusKind = "idle"
	StatusSubmitting StatusKind = "submitting"
	StatusSuccess    StatusKind = "success"
	StatusError      StatusKind = "error"
)

// Reason qualifies an error status.
type Reason string

const (
	ReasonValidation Reason = "validation"
	ReasonBackend    Reason = "backend"
)

// Status is the submission state shown to the user. Reason is set only
// for StatusError.
type Status struct {
	Kind   StatusKind `json:"kind"`
	Reason Reason     `json:"reason,omitempty"`
}

// Submitter validates booking requests and drives them through the
// backend, exposing Idle → Submitting → Success|Error transitions.
// Submitting doubles as the single-flight lock: while one submission is
// outstanding, further submits are rejected.
type Submitter struct {
	mu             sync.Mutex
	backend        Backend
	status         Status
	displayTimeout time.Duration
	revert         *time.Timer
	gen            uint64
	onChange       func(Status)
	closed         bool

	logger  *logging.Logger
	metrics *metrics.WidgetMetrics
}

// NewSubmitter creates a submitter in the idle state.
func NewSubmitter(backend Backend, displayTimeout time.Duration, logger *logging.Logger, m *metrics.WidgetMetrics) *Submitter {
	if backend == nil {
		panic("booking: backend required")
	}
	if displayTimeout <= 0 {
		displayTimeout = DefaultDisplayTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Submitter{
		backend:        backend,
		status:         Status{Kind: StatusIdle},
		displayTimeout: displayTimeout,
		logger:         logger,
		metrics:        m,
	}
}

// OnChange registers a listener invoked after every status transition,
// outside the submitter's lock. Must be set before the first Submit.
func (s *Submitter) OnChange(fn func(Status)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Status returns the current submission status.
func (s *Submitter) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Submit validates req and, if it passes, makes exactly one backend
// call. Validation failures become an error status immediately with no
// backend call. A submit while another is in flight returns
// ErrSubmitInFlight and has no effect on the outstanding request.
func (s *Submitter) Submit(ctx context.Context, req Request) (*Confirmation, error) {
	ctx, span := submitTracer.Start(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("bookingwidget.date", req.Date),
		attribute.String("bookingwidget.time", req.Time),
	)

	s.mu.Lock()
	if s.status.Kind == StatusSubmitting {
		s.mu.Unlock()
		s.metrics.ObserveSubmission("rejected_in_flight")
		return nil, ErrSubmitInFlight
	}

	if err := req.Validate(); err != nil {
		notify := s.transitionLocked(Status{Kind: StatusError, Reason: ReasonValidation}, true)
		s.mu.Unlock()
		notify()
		s.metrics.ObserveSubmission("validation_error")
		span.RecordError(err)
		return nil, err
	}

	notify := s.transitionLocked(Status{Kind: StatusSubmitting}, false)
	s.mu.Unlock()
	notify()

	conf, err := s.backend.CreateBooking(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("booking backend call failed",
			"reference", req.Reference,
			"date", req.Date,
			"time", req.Time,
			"error", err,
		)
		s.mu.Lock()
		notify = s.transitionLocked(Status{Kind: StatusError, Reason: ReasonBackend}, true)
		s.mu.Unlock()
		notify()
		s.metrics.ObserveSubmission("backend_error")
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	s.logger.Info("booking confirmed",
		"reference", req.Reference,
		"confirmation_id", conf.ConfirmationID,
		"date", req.Date,
		"time", req.Time,
	)
	s.mu.Lock()
	notify = s.transitionLocked(Status{Kind: StatusSuccess}, true)
	s.mu.Unlock()
	notify()
	s.metrics.ObserveSubmission("accepted")
	return conf, nil
}

// Dismiss clears a terminal status ahead of its display timeout. It has
// no effect while submitting or already idle.
func (s *Submitter) Dismiss() {
	s.mu.Lock()
	if s.status.Kind != StatusSuccess && s.status.Kind != StatusError {
		s.mu.Unlock()
		return
	}
	notify := s.transitionLocked(Status{Kind: StatusIdle}, false)
	s.mu.Unlock()
	notify()
}

// Close cancels any pending revert timer. After Close no further status
// transitions fire; call it when the owning widget is torn down.
func (s *Submitter) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	if s.revert != nil {
		s.revert.Stop()
		s.revert = nil
	}
}

// transitionLocked sets the status, cancels any pending revert, and, for
// terminal states, schedules a fresh revert to idle. The generation
// counter keeps a stale timer from clobbering a newer transition. It
// returns the notification to run once the lock is released.
func (s *Submitter) transitionLocked(next Status, scheduleRevert bool) func() {
	if s.closed {
		return func() {}
	}

	s.gen++
	if s.revert != nil {
		s.revert.Stop()
		s.revert = nil
	}

	s.status = next
	if scheduleRevert {
		gen := s.gen
		s.revert = time.AfterFunc(s.displayTimeout, func() {
			s.revertTo(gen)
		})
	}

	fn := s.onChange
	if fn == nil {
		return func() {}
	}
	return func() { fn(next) }
}

func (s *Submitter) revertTo(gen uint64) {
	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return
	}
	notify := s.transitionLocked(Status{Kind: StatusIdle}, false)
	s.mu.Unlock()
	notify()
}
