package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters and histograms for availability, booking
// and cancellation flows.
type BookingMetrics struct {
	availabilityLatency *prometheus.HistogramVec
	bookingsTotal       *prometheus.CounterVec
	lockContention      prometheus.Counter
	cancellationsTotal  *prometheus.CounterVec
	refundsTotal        *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		availabilityLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "appointly",
			Subsystem: "availability",
			Name:      "compute_seconds",
			Help:      "Time to load data and compute bookable dates and slots",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointly",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		lockContention: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "appointly",
			Subsystem: "booking",
			Name:      "lock_contention_total",
			Help:      "Bookings rejected because another booking held the provider-day lock",
		}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointly",
			Subsystem: "cancellation",
			Name:      "requests_total",
			Help:      "Cancellation calls by phase and outcome",
		}, []string{"phase", "outcome"}),
		refundsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointly",
			Subsystem: "cancellation",
			Name:      "refunds_total",
			Help:      "Refunds by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityLatency, m.bookingsTotal, m.lockContention, m.cancellationsTotal, m.refundsTotal)
	return m
}

func (m *BookingMetrics) ObserveAvailability(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.availabilityLatency.WithLabelValues(mode).Observe(seconds)
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveLockContention() {
	if m == nil {
		return
	}
	m.lockContention.Inc()
}

func (m *BookingMetrics) ObserveCancellation(phase, outcome string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(phase, outcome).Inc()
}

func (m *BookingMetrics) ObserveRefund(status string) {
	if m == nil {
		return
	}
	m.refundsTotal.WithLabelValues(status).Inc()
}
