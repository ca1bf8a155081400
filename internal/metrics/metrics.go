// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Question selections by mode: adaptive, standard or empty.
	selections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certbloom_selections_total",
			Help: "Total number of question selections",
		},
		[]string{"mode"},
	)

	sessionsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certbloom_sessions_scored_total",
			Help: "Total number of completed and scored practice sessions",
		},
		[]string{"mastery_achieved"},
	)

	// result: applied, deferred, dropped
	masteryUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certbloom_mastery_updates_total",
			Help: "Total number of topic mastery updates",
		},
		[]string{"result"},
	)

	importRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certbloom_import_rows_total",
			Help: "Total number of CSV question rows processed",
		},
		[]string{"result"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certbloom_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "certbloom_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Mastery update results.
const (
	MasteryApplied  = "applied"
	MasteryDeferred = "deferred"
	MasteryDropped  = "dropped"
)

// Import row results.
const (
	ImportImported = "imported"
	ImportSkipped  = "skipped"
)

func ObserveSelection(mode string) {
	selections.WithLabelValues(mode).Inc()
}

func ObserveSessionScored(masteryAchieved bool) {
	sessionsScored.WithLabelValues(strconv.FormatBool(masteryAchieved)).Inc()
}

func ObserveMasteryUpdate(result string) {
	masteryUpdates.WithLabelValues(result).Inc()
}

func ObserveImportRows(result string, n int) {
	if n <= 0 {
		return
	}
	importRows.WithLabelValues(result).Add(float64(n))
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method string, status int, seconds float64) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(seconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
