package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/coachsite/booking-widget/pkg/logging"
)

// AcceptAllBackend confirms every valid request without talking to any
// external system. Demo deployments use it when no backend URL is
// configured; nothing is persisted.
type AcceptAllBackend struct {
	logger *logging.Logger
}

// NewAcceptAllBackend creates the demo backend.
func NewAcceptAllBackend(logger *logging.Logger) *AcceptAllBackend {
	if logger == nil {
		logger = logging.Default()
	}
	return &AcceptAllBackend{logger: logger}
}

// CreateBooking accepts the request and fabricates a confirmation.
func (b *AcceptAllBackend) CreateBooking(_ context.Context, req Request) (*Confirmation, error) {
	scheduled, err := time.Parse(time.DateOnly+" 15:04", req.Date+" "+req.Time)
	if err != nil {
		scheduled = time.Now()
	}
	b.logger.Info("demo backend accepted booking",
		"reference", req.Reference,
		"date", req.Date,
		"time", req.Time,
	)
	return &Confirmation{
		ConfirmationID: uuid.NewString(),
		ScheduledFor:   scheduled,
	}, nil
}
