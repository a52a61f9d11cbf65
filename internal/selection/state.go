// Package selection holds the widget's single source of truth for what
// the user has picked so far: first a date, then one of that date's time
// slots. A time can never outlive the date it belongs to.
package selection

import (
	"errors"

	"github.com/coachsite/booking-widget/internal/availability"
	"github.com/coachsite/booking-widget/internal/calendar"
	"github.com/coachsite/booking-widget/pkg/logging"
)

// ErrInvalidSelection is returned when a time is chosen that does not
// belong to the currently chosen date. Reaching it means the UI offered
// a slot it should not have; the machine rejects it and keeps its state.
var ErrInvalidSelection = errors.New("selection: time slot not offered for the chosen date")

// Phase is where the machine currently stands.
type Phase int

const (
	NoDate Phase = iota
	DateChosen
	DateAndTimeChosen
)

func (p Phase) String() string {
	switch p {
	case DateChosen:
		return "date_chosen"
	case DateAndTimeChosen:
		return "date_and_time_chosen"
	default:
		return "no_date"
	}
}

// Machine tracks the chosen date and time. It is not safe for concurrent
// use; the owning controller serializes access.
type Machine struct {
	phase  Phase
	day    calendar.Day
	slots  []availability.Slot
	slot   availability.Slot
	logger *logging.Logger
}

// NewMachine creates a machine in the NoDate phase.
func NewMachine(logger *logging.Logger) *Machine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Machine{logger: logger}
}

// ChooseDate moves to DateChosen for a bookable day, recording the day's
// slot set and clearing any previously chosen time. A non-bookable day
// resets the machine instead: the grid never offers one, so getting here
// is a wiring defect. It logs a warning and fails silently.
func (m *Machine) ChooseDate(day calendar.Day, slots []availability.Slot) {
	if !day.Bookable {
		m.logger.Warn("non-bookable date chosen, resetting selection", "date", day.ISODate())
		m.Reset()
		return
	}
	m.phase = DateChosen
	m.day = day
	m.slots = slots
	m.slot = availability.Slot{}
}

// ChooseTime moves to DateAndTimeChosen if label is one of the chosen
// date's slots. Without a chosen date, or with a label outside the slot
// set, it fails with ErrInvalidSelection and leaves the state untouched.
func (m *Machine) ChooseTime(label string) error {
	if m.phase == NoDate {
		return ErrInvalidSelection
	}
	for _, s := range m.slots {
		if s.Label == label {
			m.phase = DateAndTimeChosen
			m.slot = s
			return nil
		}
	}
	return ErrInvalidSelection
}

// Reset returns the machine to NoDate.
func (m *Machine) Reset() {
	m.phase = NoDate
	m.day = calendar.Day{}
	m.slots = nil
	m.slot = availability.Slot{}
}

// Phase reports the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Date returns the chosen day; ok is false in the NoDate phase.
func (m *Machine) Date() (calendar.Day, bool) {
	return m.day, m.phase != NoDate
}

// Time returns the chosen slot; ok is false unless both date and time
// are chosen.
func (m *Machine) Time() (availability.Slot, bool) {
	return m.slot, m.phase == DateAndTimeChosen
}

// Slots returns the slot set recorded for the chosen date.
func (m *Machine) Slots() []availability.Slot {
	if m.phase == NoDate {
		return nil
	}
	return m.slots
}
