// Package handlers exposes widget sessions over HTTP so host pages can
// embed the booking widget against a JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coachsite/booking-widget/internal/booking"
	"github.com/coachsite/booking-widget/internal/observability/metrics"
	"github.com/coachsite/booking-widget/internal/selection"
	"github.com/coachsite/booking-widget/internal/widget"
	"github.com/coachsite/booking-widget/pkg/logging"
)

// DefaultSessionTTL evicts widget sessions idle longer than this.
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	ctrl     *widget.Controller
	lastSeen time.Time
}

// WidgetHandler owns the widget session registry. Each session holds one
// controller; sessions are independent and expire when idle.
type WidgetHandler struct {
	mu         sync.Mutex
	sessions   map[string]*session
	newWidget  func() *widget.Controller
	sessionTTL time.Duration
	now        func() time.Time
	logger     *logging.Logger
	metrics    *metrics.WidgetMetrics
}

// NewWidgetHandler creates a handler that spawns controllers from
// newWidget, one per session.
func NewWidgetHandler(newWidget func() *widget.Controller, sessionTTL time.Duration, logger *logging.Logger, m *metrics.WidgetMetrics) *WidgetHandler {
	if newWidget == nil {
		panic("handlers: widget factory required")
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WidgetHandler{
		sessions:   make(map[string]*session),
		newWidget:  newWidget,
		sessionTTL: sessionTTL,
		now:        time.Now,
		logger:     logger,
		metrics:    m,
	}
}

// Routes mounts the widget session endpoints.
func (h *WidgetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateWidget)
	r.Route("/{widgetID}", func(r chi.Router) {
		r.Get("/", h.GetView)
		r.Post("/date", h.PickDate)
		r.Post("/time", h.PickTime)
		r.Post("/booking", h.SubmitBooking)
		r.Post("/dismiss", h.DismissStatus)
	})
	return r
}

type createWidgetResponse struct {
	WidgetID string      `json:"widget_id"`
	View     widget.View `json:"view"`
}

// CreateWidget handles POST /widgets.
func (h *WidgetHandler) CreateWidget(w http.ResponseWriter, r *http.Request) {
	ctrl := h.newWidget()
	id := uuid.NewString()

	h.mu.Lock()
	h.evictIdleLocked()
	h.sessions[id] = &session{ctrl: ctrl, lastSeen: h.now()}
	h.mu.Unlock()

	h.metrics.ObserveSessionCreated()
	h.logger.Info("widget session created", "widget_id", id)
	writeJSON(w, http.StatusCreated, createWidgetResponse{WidgetID: id, View: ctrl.View()})
}

// GetView handles GET /widgets/{widgetID}.
func (h *WidgetHandler) GetView(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(chi.URLParam(r, "widgetID"))
	if !ok {
		http.Error(w, "unknown widget", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

type pickDateRequest struct {
	Date string `json:"date"`
}

// PickDate handles POST /widgets/{widgetID}/date.
func (h *WidgetHandler) PickDate(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(chi.URLParam(r, "widgetID"))
	if !ok {
		http.Error(w, "unknown widget", http.StatusNotFound)
		return
	}

	var req pickDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch err := ctrl.PickDate(r.Context(), req.Date); {
	case errors.Is(err, widget.ErrUnknownDate):
		http.Error(w, "date not offered", http.StatusNotFound)
		return
	case errors.Is(err, widget.ErrAvailability):
		http.Error(w, "availability unavailable, try again", http.StatusBadGateway)
		return
	case err != nil:
		http.Error(w, "pick date failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

type pickTimeRequest struct {
	Time string `json:"time"`
}

// PickTime handles POST /widgets/{widgetID}/time.
func (h *WidgetHandler) PickTime(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(chi.URLParam(r, "widgetID"))
	if !ok {
		http.Error(w, "unknown widget", http.StatusNotFound)
		return
	}

	var req pickTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Time == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := ctrl.PickTime(req.Time); err != nil {
		if errors.Is(err, selection.ErrInvalidSelection) {
			http.Error(w, "time not offered for the chosen date", http.StatusConflict)
			return
		}
		http.Error(w, "pick time failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

// SubmitBooking handles POST /widgets/{widgetID}/booking. Validation
// problems map to 422 and in-flight rejection to 409; a backend failure
// shows up in the view's status banner, not the transport status.
func (h *WidgetHandler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(chi.URLParam(r, "widgetID"))
	if !ok {
		http.Error(w, "unknown widget", http.StatusNotFound)
		return
	}

	var form widget.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch err := ctrl.SubmitForm(r.Context(), form); {
	case booking.IsValidationError(err):
		writeJSON(w, http.StatusUnprocessableEntity, ctrl.View())
		return
	case errors.Is(err, booking.ErrSubmitInFlight):
		http.Error(w, "a submission is already in flight", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

// DismissStatus handles POST /widgets/{widgetID}/dismiss.
func (h *WidgetHandler) DismissStatus(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(chi.URLParam(r, "widgetID"))
	if !ok {
		http.Error(w, "unknown widget", http.StatusNotFound)
		return
	}
	ctrl.DismissStatus()
	writeJSON(w, http.StatusOK, ctrl.View())
}

// Close tears down every session, cancelling pending status timers.
func (h *WidgetHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.ctrl.Close()
		delete(h.sessions, id)
	}
}

func (h *WidgetHandler) lookup(id string) (*widget.Controller, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = h.now()
	return s.ctrl, true
}

// evictIdleLocked drops sessions idle past the TTL. Called with h.mu
// held, piggybacked on session creation to avoid a janitor goroutine.
func (h *WidgetHandler) evictIdleLocked() {
	cutoff := h.now().Add(-h.sessionTTL)
	for id, s := range h.sessions {
		if s.lastSeen.Before(cutoff) {
			s.ctrl.Close()
			delete(h.sessions, id)
			h.logger.Info("widget session expired", "widget_id", id)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
