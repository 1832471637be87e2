// Package metrics exposes Prometheus instrumentation for garment
// analysis, wardrobe matching and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Analysis
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thrift_analysis_duration_seconds",
			Help:    "Duration of garment analysis stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"}, // decode, segment, extract, classify
	)

	AnalysisErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thrift_analysis_errors_total",
			Help: "Total number of garment analysis errors by kind",
		},
		[]string{"kind"},
	)

	AnalysisRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thrift_analysis_single_cluster_retries_total",
			Help: "Color extractions retried with a single cluster",
		},
	)

	// Matching
	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thrift_match_score",
			Help:    "Compatibility scores of returned matches (always above the match threshold)",
			Buckets: []float64{0.6, 0.8, 1.0},
		},
	)

	MatchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thrift_matches_returned",
			Help:    "Number of matches returned per match request",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// Wardrobe
	WardrobeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thrift_wardrobe_operations_total",
			Help: "Total number of wardrobe repository operations",
		},
		[]string{"operation", "status"},
	)

	// Classifier
	ClassifierRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thrift_classifier_requests_total",
			Help: "Total number of classifier calls by outcome",
		},
		[]string{"outcome"}, // ok, error, low_confidence
	)

	// API
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thrift_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thrift_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)
)

// ObserveStage records the duration of one analysis stage.
func ObserveStage(stage string, start time.Time) {
	AnalysisDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordAnalysisError counts an analysis failure of the given kind.
func RecordAnalysisError(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	AnalysisErrors.WithLabelValues(kind).Inc()
}

// RecordMatch records the scores of the returned matches and how many there
// were.
func RecordMatch(scores []float64, returned int) {
	for _, s := range scores {
		MatchScores.Observe(s)
	}
	MatchesReturned.Observe(float64(returned))
}

// RecordWardrobeOp counts a repository call.
func RecordWardrobeOp(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	WardrobeOperations.WithLabelValues(operation, status).Inc()
}

// RecordClassifier counts a classifier call.
func RecordClassifier(outcome string) {
	ClassifierRequests.WithLabelValues(outcome).Inc()
}

// RecordAPIRequest records one finished API request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
