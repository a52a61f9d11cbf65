// Package widget wires calendar window, availability, selection, and
// submission together behind one controller per widget instance.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coachsite/booking-widget/internal/availability"
	"github.com/coachsite/booking-widget/internal/booking"
	"github.com/coachsite/booking-widget/internal/calendar"
	"github.com/coachsite/booking-widget/internal/observability/metrics"
	"github.com/coachsite/booking-widget/internal/selection"
	"github.com/coachsite/booking-widget/pkg/logging"
)

var (
	// ErrUnknownDate is returned when a picked date is outside the
	// window the widget offered.
	ErrUnknownDate = errors.New("widget: date is not in the offered window")

	// ErrAvailability is returned when the slots for a picked date
	// cannot be determined; the selection is left unchanged.
	ErrAvailability = errors.New("widget: availability lookup failed")
)

// Form is the user's contact input.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Config carries the controller's injected dependencies. Provider and
// Backend are required; the rest have defaults.
type Config struct {
	Now            func() time.Time
	WindowDays     int
	Provider       availability.Provider
	Backend        booking.Backend
	DisplayTimeout time.Duration
	Logger         *logging.Logger
	Metrics        *metrics.WidgetMetrics
}

// Controller owns one selection machine and one submitter and re-derives
// the view after every transition. Intents are serialized; each runs to
// completion before the next is processed.
type Controller struct {
	mu        sync.Mutex
	window    calendar.Window
	machine   *selection.Machine
	submitter *booking.Submitter
	provider  availability.Provider
	status    booking.Status
	view      View
	onUpdate  func(View)
	logger    *logging.Logger
}

// New constructs a controller with its own window, selection machine,
// and submitter. Independent instances do not share state.
func New(cfg Config) *Controller {
	if cfg.Provider == nil {
		panic("widget: availability provider required")
	}
	if cfg.Backend == nil {
		panic("widget: booking backend required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	c := &Controller{
		window:   calendar.Generate(now(), cfg.WindowDays),
		machine:  selection.NewMachine(logger),
		provider: cfg.Provider,
		status:   booking.Status{Kind: booking.StatusIdle},
		logger:   logger,
	}
	c.submitter = booking.NewSubmitter(cfg.Backend, cfg.DisplayTimeout, logger, cfg.Metrics)
	c.submitter.OnChange(c.handleStatus)
	c.view = deriveView(c.window, c.machine, c.status)
	return c
}

// OnUpdate registers a listener invoked with a fresh view after every
// state change. The listener runs on the transitioning goroutine and
// must not call back into the controller. Set it before handing out
// intents.
func (c *Controller) OnUpdate(fn func(View)) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// View returns the current view snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// PickDate selects a date from the window and loads its slots. Picking
// a date always clears any previously chosen time.
func (c *Controller) PickDate(ctx context.Context, isoDate string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	day, ok := c.window.DayFor(isoDate)
	if !ok {
		c.logger.Warn("date outside offered window picked", "date", isoDate)
		return ErrUnknownDate
	}

	slots, err := c.provider.Slots(ctx, day)
	if err != nil {
		c.logger.Error("availability lookup failed", "date", isoDate, "error", err)
		return fmt.Errorf("%w: %v", ErrAvailability, err)
	}

	c.machine.ChooseDate(day, slots)
	c.refreshLocked()
	return nil
}

// PickTime selects one of the active date's slots.
func (c *Controller) PickTime(label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.ChooseTime(label); err != nil {
		// The grid should never offer a slot the machine rejects.
		c.logger.Warn("rejected time pick", "time", label, "error", err)
		return err
	}
	c.refreshLocked()
	return nil
}

// SubmitForm composes the booking request from the current selection and
// form input and submits it. On success the selection resets so the
// widget is ready for the next booking.
func (c *Controller) SubmitForm(ctx context.Context, form Form) error {
	c.mu.Lock()
	req := booking.Request{
		Reference: uuid.NewString(),
		Name:      form.Name,
		Email:     form.Email,
		Message:   form.Message,
	}
	if d, ok := c.machine.Date(); ok {
		req.Date = d.ISODate()
	}
	if s, ok := c.machine.Time(); ok {
		req.Time = s.Label
	}
	c.mu.Unlock()

	// The submitter serializes itself; holding the controller lock over
	// the backend call would deadlock with its status notifications.
	if _, err := c.submitter.Submit(ctx, req); err != nil {
		return err
	}

	c.mu.Lock()
	c.machine.Reset()
	c.refreshLocked()
	c.mu.Unlock()
	return nil
}

// DismissStatus clears a success or error banner early.
func (c *Controller) DismissStatus() {
	c.submitter.Dismiss()
}

// Close tears the controller down, cancelling any pending status revert
// so no transition fires after the widget is gone.
func (c *Controller) Close() {
	c.submitter.Close()
}

func (c *Controller) handleStatus(status booking.Status) {
	c.mu.Lock()
	c.status = status
	c.refreshLocked()
	c.mu.Unlock()
}

// refreshLocked re-derives the view and pushes it to the update
// listener in transition order.
func (c *Controller) refreshLocked() {
	c.view = deriveView(c.window, c.machine, c.status)
	if c.onUpdate != nil {
		c.onUpdate(c.view)
	}
}
