// Package availability answers which time slots can still be booked on a
// given day. The widget core only sees the Provider interface; the
// concrete source (simulated, HTTP scheduling backend, cached) is wired
// in at startup.
package availability

import (
	"context"
	"errors"

	"github.com/coachsite/booking-widget/internal/calendar"
)

// CanonicalSlots is the full set of slot labels a bookable day can offer,
// in display order. Providers return a subset of these.
var CanonicalSlots = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}

// ErrBackendUnavailable is returned when the scheduling backend cannot be
// queried. The widget surfaces it as a generic availability failure.
var ErrBackendUnavailable = errors.New("availability: scheduling backend unavailable")

// Slot is one schedulable time on a specific day. The label is opaque to
// the core; uniqueness per day is the provider's responsibility.
type Slot struct {
	Date  string `json:"date"`
	Label string `json:"time"`
}

// Provider yields the bookable slots for a day. Implementations must
// return an empty slice, not an error, for non-bookable days.
type Provider interface {
	Slots(ctx context.Context, day calendar.Day) ([]Slot, error)
}

// Labels extracts the slot labels in provider order.
func Labels(slots []Slot) []string {
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		labels = append(labels, s.Label)
	}
	return labels
}
