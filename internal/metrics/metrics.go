// Package metrics holds the Prometheus collectors shared by cinescope components.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for UpstreamRequests.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeCached    = "cached"
	OutcomeCancelled = "cancelled"
)

var (
	// UpstreamRequests counts metadata provider calls by endpoint family and outcome.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinescope",
		Name:      "upstream_requests_total",
		Help:      "Metadata provider requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// UpstreamRetries counts transport-level retry attempts.
	UpstreamRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cinescope",
		Name:      "upstream_retries_total",
		Help:      "HTTP retry attempts against the metadata provider.",
	})

	// EnrichmentFailures counts per-item detail lookups that fell back to the sentinel runtime.
	EnrichmentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinescope",
		Name:      "enrichment_failures_total",
		Help:      "Item enrichment lookups that failed, by media type.",
	}, []string{"media_type"})

	// PagesFetched counts listing pages by resulting status.
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinescope",
		Name:      "pages_fetched_total",
		Help:      "Listing pages fetched, by page status.",
	}, []string{"status"})

	// StaleDiscards counts completed fetches dropped because a newer one superseded them.
	StaleDiscards = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinescope",
		Name:      "stale_discards_total",
		Help:      "Fetch results discarded because a newer request superseded them.",
	}, []string{"source"})

	// HTTPRequests counts JSON API requests by route pattern and status code class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinescope",
		Name:      "http_requests_total",
		Help:      "JSON API requests by route and status class.",
	}, []string{"route", "code"})
)

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StatusClass buckets an HTTP status code as "2xx", "4xx" and so on.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	}
	return "1xx"
}
