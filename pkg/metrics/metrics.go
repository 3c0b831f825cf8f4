package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparkos_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Completions by outcome
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkos_completions_total",
			Help: "Total number of completion attempts",
		},
		[]string{"cadence", "result"}, // result: recorded, already_recorded, invalid_date, not_found, error
	)

	// XP granted
	XPAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sparkos_xp_awarded_total",
			Help: "Total experience points awarded",
		},
	)

	// Level ups
	LevelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sparkos_level_ups_total",
			Help: "Total number of level ups",
		},
	)

	// Rollover evaluations
	RolloversTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkos_rollovers_total",
			Help: "Total number of rollover evaluations",
		},
		[]string{"result"}, // result: broken, kept, skipped, locked, error
	)

	// Published domain events
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkos_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"type", "status"}, // status: success, failed
	)
)

// RecordHTTPRequestDuration records HTTP request latency
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementCompletion counts a completion attempt
func IncrementCompletion(cadence, result string) {
	CompletionsTotal.WithLabelValues(cadence, result).Inc()
}

// AddXP counts awarded experience
func AddXP(amount int64) {
	XPAwardedTotal.Add(float64(amount))
}

// IncrementLevelUp counts a level up
func IncrementLevelUp() {
	LevelUpsTotal.Inc()
}

// IncrementRollover counts a rollover evaluation
func IncrementRollover(result string) {
	RolloversTotal.WithLabelValues(result).Inc()
}

// IncrementEventPublished counts a published event
func IncrementEventPublished(eventType, status string) {
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
