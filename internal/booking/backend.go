// Package booking composes a validated booking request from the user's
// selection and form input and drives its submission against an external
// booking backend.
package booking

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBackend covers any non-success from the booking backend. The
	// core does not distinguish sub-causes; the user is prompted to retry.
	ErrBackend = errors.New("booking: backend call failed")

	// ErrSubmitInFlight rejects a submit while another one is
	// outstanding. At most one backend call may be in flight.
	ErrSubmitInFlight = errors.New("booking: a submission is already in flight")
)

// Confirmation is what the backend returns for an accepted booking.
type Confirmation struct {
	ConfirmationID string    `json:"confirmation_id"`
	ScheduledFor   time.Time `json:"scheduled_for"`
}

// Backend is the external booking collaborator. Implementations are
// assumed network-bound and fallible.
type Backend interface {
	CreateBooking(ctx context.Context, req Request) (*Confirmation, error)
}
