package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coachsite/booking-widget/pkg/logging"
)

const defaultBackendTimeout = 20 * time.Second

// HTTPBackend is a thin JSON client for the external booking backend.
type HTTPBackend struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPBackend creates a Backend talking to the booking API at
// baseURL. token is optional; when set it is sent as a bearer token.
func NewHTTPBackend(baseURL, token string, logger *logging.Logger) *HTTPBackend {
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPBackend{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultBackendTimeout,
		},
		logger: logger,
	}
}

type createBookingResponse struct {
	ConfirmationID string    `json:"confirmation_id"`
	ScheduledFor   time.Time `json:"scheduled_for"`
}

// CreateBooking posts the request to the backend. Single attempt; retry
// policy belongs to the user, not the core.
func (b *HTTPBackend) CreateBooking(ctx context.Context, req Request) (*Confirmation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("booking: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/bookings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("booking: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("booking: backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		b.logger.Error("booking backend rejected request",
			"reference", req.Reference,
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return nil, fmt.Errorf("booking: backend status %d", resp.StatusCode)
	}

	var out createBookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("booking: decode response: %w", err)
	}
	return &Confirmation{
		ConfirmationID: out.ConfirmationID,
		ScheduledFor:   out.ScheduledFor,
	}, nil
}
