package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/coachsite/booking-widget/internal/calendar"
	"github.com/coachsite/booking-widget/pkg/logging"
)

const defaultQueryTimeout = 10 * time.Second

var httpTracer = otel.Tracer("bookingwidget.internal.availability")

// HTTPProvider queries an external scheduling backend for a day's open
// slots. The backend owns the truth about what is free; this client does
// no filtering of its own beyond the non-bookable short-circuit.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPProvider creates a Provider backed by the scheduling API at
// baseURL.
func NewHTTPProvider(baseURL string, logger *logging.Logger) *HTTPProvider {
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultQueryTimeout,
		},
		logger: logger,
	}
}

type slotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// Slots asks the backend for the open slots on the given day. Transport
// failures and non-2xx responses surface as ErrBackendUnavailable.
func (p *HTTPProvider) Slots(ctx context.Context, day calendar.Day) ([]Slot, error) {
	if !day.Bookable {
		return []Slot{}, nil
	}

	ctx, span := httpTracer.Start(ctx, "availability.query")
	defer span.End()
	span.SetAttributes(attribute.String("bookingwidget.date", day.ISODate()))

	endpoint := fmt.Sprintf("%s/availability?date=%s", p.baseURL, url.QueryEscape(day.ISODate()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("availability: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("availability query failed", "date", day.ISODate(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.logger.Error("availability query rejected",
			"date", day.ISODate(),
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, fmt.Errorf("%w: status %d", ErrBackendUnavailable, resp.StatusCode)
	}

	var out slotsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("availability: decode response: %w", err)
	}

	slots := make([]Slot, 0, len(out.Slots))
	for _, label := range out.Slots {
		slots = append(slots, Slot{Date: day.ISODate(), Label: label})
	}
	return slots, nil
}
