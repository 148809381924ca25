// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogPagesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_catalog_pages_loaded_total",
		Help: "Total number of catalog pages loaded",
	})

	CatalogLoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_catalog_load_failures_total",
		Help: "Total number of failed catalog page loads",
	}, []string{"kind"})

	StockSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_stock_saves_total",
		Help: "Total number of debounced stock saves by outcome",
	}, []string{"outcome"})

	FeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_feed_events_total",
		Help: "Total number of live order events received",
	}, []string{"type"})

	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_api_request_duration_seconds",
		Help:    "Backend API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_control_requests_total",
		Help: "Total number of control API requests",
	}, []string{"method", "status"})
)

// Catalog failure kinds
const (
	FailureNotFound = "not_found"
	FailureError    = "error"
)

// Stock save outcomes
const (
	OutcomeSaved   = "saved"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)
