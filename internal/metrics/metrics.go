package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for booking and verification counters.
const (
	OutcomeSuccess      = "success"
	OutcomeNotFound     = "not_found"
	OutcomeInvalidType  = "invalid_ticket_type"
	OutcomeInsufficient = "insufficient_inventory"
	OutcomeDuplicate    = "duplicate"
	OutcomeInvalidCode  = "invalid_code"
	OutcomeCodeExpired  = "code_expired"
	OutcomeInvalid      = "invalid_request"
	OutcomeError        = "error"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	BookingsTotal       *prometheus.CounterVec
	TicketsSold         *prometheus.CounterVec
	VerificationsTotal  *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatherly_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gatherly_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatherly_bookings_total",
				Help: "Booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		TicketsSold: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatherly_tickets_sold_total",
				Help: "Tickets sold by ticket type",
			},
			[]string{"ticket_type"},
		),
		VerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatherly_verifications_total",
				Help: "Account verification attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.TicketsSold,
		m.VerificationsTotal,
	)
	return m
}

// The observe helpers accept a nil receiver so services can run without
// metrics in tests.

func (m *Metrics) ObserveBooking(outcome, ticketType string, quantity int) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.TicketsSold.WithLabelValues(ticketType).Add(float64(quantity))
	}
}

func (m *Metrics) ObserveVerification(outcome string) {
	if m == nil {
		return
	}
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
}
