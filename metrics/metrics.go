// Package metrics exposes Prometheus counters for image ingestion and HTTP
// traffic at /metrics.
package metrics

import (
	"net/http"

	"github.com/krishkalaria12/linegrade/apperror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingestion outcomes.
const (
	OutcomeCreated       = "created"
	OutcomeInvalid       = "invalid"
	OutcomeUnknownCamera = "unknown_camera"
	OutcomeDuplicate     = "duplicate"
	OutcomeError         = "error"
)

var (
	ImagesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linegrade",
			Name:      "images_ingested_total",
			Help:      "Image submissions from cameras by outcome",
		},
		[]string{"outcome"},
	)

	ItemsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "linegrade",
			Name:      "items_created_total",
			Help:      "Items created implicitly by image ingestion",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linegrade",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// IngestOutcome maps the result of an ingestion to its outcome label.
func IngestOutcome(err error) string {
	if err == nil {
		return OutcomeCreated
	}
	switch apperror.KindOf(err) {
	case apperror.Validation:
		return OutcomeInvalid
	case apperror.NotFound:
		return OutcomeUnknownCamera
	case apperror.Conflict:
		return OutcomeDuplicate
	default:
		return OutcomeError
	}
}

// ObserveIngest counts one ingestion attempt.
func ObserveIngest(err error) {
	ImagesIngested.WithLabelValues(IngestOutcome(err)).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
