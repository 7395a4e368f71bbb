package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusnest", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campusnest", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	BookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusnest", Name: "booking_events_total", Help: "Booking outcomes."},
		[]string{"event"}, // created|conflict|cancelled|confirmed
	)
	RatingsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusnest", Name: "ratings_submitted_total", Help: "Ratings submitted."},
		[]string{"kind"}, // new|update
	)
	ReceiptsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusnest", Name: "receipts_generated_total", Help: "Receipt generation results."},
		[]string{"result"}, // ok|error|timeout
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusnest", Name: "cache_events_total", Help: "Response cache hits/misses/sets."},
		[]string{"cache", "event"},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusnest", Name: "rate_limited_total", Help: "Requests rejected by the rate limiter."},
		[]string{"backend"}, // redis|local
	)
)

// InitRegistry returns a registry holding every collector of this package.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, BookingEvents, RatingsSubmitted,
		ReceiptsGenerated, CacheEvents, RateLimited)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveBooking(event string) { BookingEvents.WithLabelValues(event).Inc() }

func ObserveRating(updated bool) {
	kind := "new"
	if updated {
		kind = "update"
	}
	RatingsSubmitted.WithLabelValues(kind).Inc()
}

func ObserveReceipt(result string) { ReceiptsGenerated.WithLabelValues(result).Inc() }

func ObserveCache(cache, event string) { // event: hit|miss|set|bypass
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveRateLimited(backend string) { RateLimited.WithLabelValues(backend).Inc() }
