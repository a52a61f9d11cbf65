package metrics

import "github.com/prometheus/client_golang/prometheus"

// WidgetMetrics exposes counters for the booking widget flows.
type WidgetMetrics struct {
	submissionsTotal  *prometheus.CounterVec
	availabilityTotal *prometheus.CounterVec
	sessionsTotal     prometheus.Counter
}

func NewWidgetMetrics(reg prometheus.Registerer) *WidgetMetrics {
	m := &WidgetMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingwidget",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingwidget",
			Subsystem: "availability",
			Name:      "queries_total",
			Help:      "Availability queries by source and status",
		}, []string{"source", "status"}),
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingwidget",
			Subsystem: "widget",
			Name:      "sessions_created_total",
			Help:      "Widget sessions created",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.availabilityTotal, m.sessionsTotal)
	return m
}

// ObserveSubmission records one booking submission outcome
// (accepted, validation_error, backend_error, rejected_in_flight).
func (m *WidgetMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveAvailability records one availability lookup.
func (m *WidgetMetrics) ObserveAvailability(source, status string) {
	if m == nil {
		return
	}
	m.availabilityTotal.WithLabelValues(source, status).Inc()
}

// ObserveSessionCreated records one new widget session.
func (m *WidgetMetrics) ObserveSessionCreated() {
	if m == nil {
		return
	}
	m.sessionsTotal.Inc()
}
