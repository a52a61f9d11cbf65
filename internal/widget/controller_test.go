package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachsite/booking-widget/internal/availability"
	"github.com/coachsite/booking-widget/internal/booking"
	"github.com/coachsite/booking-widget/internal/calendar"
)

// fixedProvider is a deterministic availability fake keyed by ISO date.
type fixedProvider struct {
	byDate map[string][]string
	err    error
}

func (p *fixedProvider) Slots(_ context.Context, day calendar.Day) ([]availability.Slot, error) {
	if p.err != nil {
		return nil, p.err
	}
	if !day.Bookable {
		return []availability.Slot{}, nil
	}
	labels := p.byDate[day.ISODate()]
	slots := make([]availability.Slot, 0, len(labels))
	for _, l := range labels {
		slots = append(slots, availability.Slot{Date: day.ISODate(), Label: l})
	}
	return slots, nil
}

type fakeBackend struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (b *fakeBackend) CreateBooking(_ context.Context, req booking.Request) (*booking.Confirmation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return &booking.Confirmation{ConfirmationID: "conf-" + req.Reference}, nil
}

// anchor is Monday 2026-08-31.
func mondayAnchor() time.Time {
	return time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)
}

func newController(t *testing.T, provider availability.Provider, backend booking.Backend) *Controller {
	t.Helper()
	if provider == nil {
		provider = &fixedProvider{byDate: map[string][]string{
			"2026-08-31": {"09:00", "10:00", "14:00"},
			"2026-09-01": {"11:00"},
		}}
	}
	if backend == nil {
		backend = &fakeBackend{}
	}
	c := New(Config{
		Now:            mondayAnchor,
		WindowDays:     30,
		Provider:       provider,
		Backend:        backend,
		DisplayTimeout: time.Minute,
	})
	t.Cleanup(c.Close)
	return c
}

func TestInitialView(t *testing.T) {
	c := newController(t, nil, nil)
	v := c.View()

	assert.Len(t, v.Days, 30)
	assert.Equal(t, 1, v.LeadingBlanks, "Monday anchor aligns under column 1")
	assert.Empty(t, v.Slots)
	assert.False(t, v.ShowForm)
	assert.Equal(t, "idle", v.Status.Kind)

	// Day 0 is the Monday anchor, day 5 the following Saturday.
	assert.Equal(t, "2026-08-31", v.Days[0].Date)
	assert.True(t, v.Days[0].Bookable)
	assert.Equal(t, "2026-09-05", v.Days[5].Date)
	assert.False(t, v.Days[5].Bookable)
}

func TestPickDateShowsSlots(t *testing.T) {
	c := newController(t, nil, nil)

	require.NoError(t, c.PickDate(context.Background(), "2026-08-31"))

	v := c.View()
	assert.True(t, v.Days[0].Selected)
	require.Len(t, v.Slots, 3)
	assert.Equal(t, "09:00", v.Slots[0].Time)
	assert.False(t, v.ShowForm, "form hidden until a time is chosen")
}

func TestPickDateOutsideWindow(t *testing.T) {
	c := newController(t, nil, nil)

	err := c.PickDate(context.Background(), "2027-01-01")
	assert.ErrorIs(t, err, ErrUnknownDate)
	assert.False(t, c.View().Days[0].Selected)
}

func TestPickDateAvailabilityFailure(t *testing.T) {
	c := newController(t, &fixedProvider{err: errors.New("backend down")}, nil)

	err := c.PickDate(context.Background(), "2026-08-31")
	assert.ErrorIs(t, err, ErrAvailability)
	assert.False(t, c.View().Days[0].Selected, "failed lookup must not change the selection")
}

func TestPickTimeRevealsForm(t *testing.T) {
	c := newController(t, nil, nil)
	require.NoError(t, c.PickDate(context.Background(), "2026-08-31"))

	require.NoError(t, c.PickTime("10:00"))

	v := c.View()
	assert.True(t, v.ShowForm)
	for _, s := range v.Slots {
		assert.Equal(t, s.Time == "10:00", s.Selected)
	}
}

func TestPickTimeNotOffered(t *testing.T) {
	c := newController(t, nil, nil)
	require.NoError(t, c.PickDate(context.Background(), "2026-08-31"))

	err := c.PickTime("13:37")
	assert.Error(t, err)
	assert.False(t, c.View().ShowForm)
}

func TestDateChangeClearsChosenTime(t *testing.T) {
	c := newController(t, nil, nil)
	require.NoError(t, c.PickDate(context.Background(), "2026-08-31"))
	require.NoError(t, c.PickTime("10:00"))

	require.NoError(t, c.PickDate(context.Background(), "2026-09-01"))

	v := c.View()
	assert.False(t, v.ShowForm)
	require.Len(t, v.Slots, 1)
	assert.False(t, v.Slots[0].Selected)
}

// Full happy path: Monday anchor, pick day 0 and 10:00, submit as Jane
// Doe, observe Submitting then Success, selection reset to nothing.
func TestBookingScenario(t *testing.T) {
	backend := &fakeBackend{}
	c := newController(t, nil, backend)

	var kinds []string
	var mu sync.Mutex
	c.OnUpdate(func(v View) {
		mu.Lock()
		kinds = append(kinds, v.Status.Kind)
		mu.Unlock()
	})

	require.NoError(t, c.PickDate(context.Background(), "2026-08-31"))
	require.NoError(t, c.PickTime("10:00"))
	require.NoError(t, c.SubmitForm(context.Background(), Form{
		Name:  "Jane Doe",
		Email: "jane@example.com",
	}))

	assert.Equal(t, 1, backend.calls)

	mu.Lock()
	seen := append([]string(nil), kinds...)
	mu.Unlock()
	assert.Subset(t, seen, []string{"submitting", "success"})

	v := c.View()
	assert.Equal(t, "success", v.Status.Kind)
	assert.NotEmpty(t, v.Status.Message)
	assert.False(t, v.ShowForm, "selection resets after a successful booking")
	assert.Empty(t, v.Slots)
	for _, d := range v.Days {
		assert.False(t, d.Selected)
	}
}

func TestSubmitFormValidationError(t *testing.T) {
	backend := &fakeBackend{}
	c := newController(t, nil, backend)
	require.NoError(t, c.PickDate(context.Background(), "2026-08-31"))
	require.NoError(t, c.PickTime("10:00"))

	err := c.SubmitForm(context.Background(), Form{Name: "", Email: "jane@example.com"})
	assert.True(t, booking.IsValidationError(err))
	assert.Equal(t, 0, backend.calls)

	v := c.View()
	assert.Equal(t, "error", v.Status.Kind)
	assert.Equal(t, "Please fill in all required fields.", v.Status.Message)
	assert.True(t, v.ShowForm, "selection survives a validation failure")
}

func TestSubmitFormWithoutSelection(t *testing.T) {
	backend := &fakeBackend{}
	c := newController(t, nil, backend)

	err := c.SubmitForm(context.Background(), Form{Name: "Jane Doe", Email: "jane@example.com"})
	assert.ErrorIs(t, err, booking.ErrIncompleteSelection)
	assert.Equal(t, 0, backend.calls)
}

func TestSubmitFormBackendError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("upstream 500")}
	c := newController(t, nil, backend)
	require.NoError(t, c.PickDate(context.Background(), "2026-08-31"))
	require.NoError(t, c.PickTime("10:00"))

	err := c.SubmitForm(context.Background(), Form{Name: "Jane Doe", Email: "jane@example.com"})
	assert.ErrorIs(t, err, booking.ErrBackend)

	v := c.View()
	assert.Equal(t, "error", v.Status.Kind)
	assert.Equal(t, "Booking failed. Please try again.", v.Status.Message)
	assert.True(t, v.ShowForm, "the user may retry after a backend failure")
}

func TestDismissStatus(t *testing.T) {
	c := newController(t, nil, nil)
	require.NoError(t, c.PickDate(context.Background(), "2026-08-31"))
	require.NoError(t, c.PickTime("10:00"))
	require.NoError(t, c.SubmitForm(context.Background(), Form{
		Name:  "Jane Doe",
		Email: "jane@example.com",
	}))
	require.Equal(t, "success", c.View().Status.Kind)

	c.DismissStatus()
	assert.Equal(t, "idle", c.View().Status.Kind)
	assert.Empty(t, c.View().Status.Message)
}

func TestIndependentInstances(t *testing.T) {
	a := newController(t, nil, nil)
	b := newController(t, nil, nil)

	require.NoError(t, a.PickDate(context.Background(), "2026-08-31"))

	assert.True(t, a.View().Days[0].Selected)
	assert.False(t, b.View().Days[0].Selected, "instances must not share state")
}
