package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_attempts_total",
			Help: "Booking attempts by outcome (confirmed or the rejection kind)",
		},
		[]string{"outcome"},
	)

	PriceAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_price_adjustments_total",
			Help: "Pricing rule adjustments applied to confirmed bookings",
		},
		[]string{"applies_to"},
	)

	AvailabilityCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_cache_lookups_total",
			Help: "Availability snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func RecordBookingAttempt(outcome string) {
	BookingAttempts.WithLabelValues(outcome).Inc()
}

func RecordPriceAdjustment(appliesTo string) {
	PriceAdjustments.WithLabelValues(appliesTo).Inc()
}

func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	AvailabilityCache.WithLabelValues(result).Inc()
}

func RecordHTTPRequest(method, path, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}
