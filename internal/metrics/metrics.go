// Package metrics holds the Prometheus collectors for publogs.
//
// All collectors register against the default registry; Handler exposes them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPResponses counts responses by status class ("2xx", "4xx", ...).
	HTTPResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "publogs_http_responses_total",
		Help: "HTTP responses by status class.",
	}, []string{"class"})

	// HTTPDuration tracks request latency.
	HTTPDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "publogs_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	// SanitizeDuration tracks how long each transform takes, by kind.
	SanitizeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "publogs_sanitize_duration_seconds",
		Help:    "Time spent sanitizing one file.",
		Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"kind"})

	// GuardLookups counts round guard answers by how they were reached:
	// "no_round", "cached", "refreshed", "failed_closed".
	GuardLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "publogs_guard_lookups_total",
		Help: "Round guard lookups by result.",
	}, []string{"result"})

	// GuardRefreshDuration tracks liveness source latency.
	GuardRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "publogs_guard_refresh_duration_seconds",
		Help:    "Time spent asking the liveness source about one round.",
		Buckets: []float64{.001, .01, .05, .1, .5, 1, 2.5, 5, 10},
	})

	// GuardRounds tracks cached rounds by state.
	GuardRounds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "publogs_guard_rounds",
		Help: "Rounds in the guard cache by state.",
	}, []string{"state"})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveResponse records one HTTP response.
func ObserveResponse(status int, elapsed time.Duration) {
	HTTPResponses.WithLabelValues(StatusClass(status)).Inc()
	HTTPDuration.Observe(elapsed.Seconds())
}

// StatusClass returns "2xx" style labels; anything out of range is "other".
func StatusClass(status int) string {
	switch status / 100 {
	case 1:
		return "1xx"
	case 2:
		return "2xx"
	case 3:
		return "3xx"
	case 4:
		return "4xx"
	case 5:
		return "5xx"
	default:
		return "other"
	}
}
