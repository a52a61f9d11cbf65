package widget

import (
	"github.com/coachsite/booking-widget/internal/booking"
	"github.com/coachsite/booking-widget/internal/calendar"
	"github.com/coachsite/booking-widget/internal/selection"
)

// View is the rendering-agnostic snapshot a host page draws the widget
// from. Plain data only; the rendering layer owns all markup.
type View struct {
	LeadingBlanks int        `json:"leading_blanks"`
	Days          []DayView  `json:"days"`
	Slots         []SlotView `json:"slots"`
	ShowForm      bool       `json:"show_form"`
	Status        StatusView `json:"status"`
}

// DayView is one calendar grid cell.
type DayView struct {
	Date       string `json:"date"`
	DayOfMonth int    `json:"day_of_month"`
	Bookable   bool   `json:"bookable"`
	Selected   bool   `json:"selected"`
}

// SlotView is one selectable time for the active date.
type SlotView struct {
	Time     string `json:"time"`
	Selected bool   `json:"selected"`
}

// StatusView is the status banner. Message is empty when idle.
type StatusView struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

func deriveView(window calendar.Window, machine *selection.Machine, status booking.Status) View {
	v := View{
		LeadingBlanks: window.LeadingBlanks,
		Days:          make([]DayView, 0, len(window.Days)),
		Slots:         []SlotView{},
		ShowForm:      machine.Phase() == selection.DateAndTimeChosen,
		Status: StatusView{
			Kind:    string(status.Kind),
			Message: statusMessage(status),
		},
	}

	chosenDate := ""
	if d, ok := machine.Date(); ok {
		chosenDate = d.ISODate()
	}
	chosenTime := ""
	if s, ok := machine.Time(); ok {
		chosenTime = s.Label
	}

	for _, d := range window.Days {
		v.Days = append(v.Days, DayView{
			Date:       d.ISODate(),
			DayOfMonth: d.Date.Day(),
			Bookable:   d.Bookable,
			Selected:   d.ISODate() == chosenDate,
		})
	}
	for _, s := range machine.Slots() {
		v.Slots = append(v.Slots, SlotView{
			Time:     s.Label,
			Selected: s.Label == chosenTime,
		})
	}
	return v
}

// Presentation strings live here, at the edge of the core, so the state
// machinery below stays message-free.
func statusMessage(status booking.Status) string {
	switch status.Kind {
	case booking.StatusSubmitting:
		return "Booking your appointment..."
	case booking.StatusSuccess:
		return "Appointment booked! You will receive a confirmation by email."
	case booking.StatusError:
		if status.Reason == booking.ReasonValidation {
			return "Please fill in all required fields."
		}
		return "Booking failed. Please try again."
	default:
		return ""
	}
}
