// Package metrics defines Prometheus metrics for cardstash.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cardstash"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 when the liveness probe last succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 when the readiness probe last succeeded, 0 otherwise.",
	})
)

// Marketplace lookup metrics.
var (
	EbayTokenRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ebay_token_requests_total",
		Help:      "Total client-credentials token exchanges performed.",
	})

	EbayAPICallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ebay_api_calls_total",
		Help:      "Total eBay Browse API search calls.",
	})

	LookupFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lookup_failures_total",
		Help:      "Total price lookups that failed upstream.",
	})

	LookupMedianCAD = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lookup_median_cad",
		Help:      "Distribution of computed median estimates in CAD.",
		Buckets:   prometheus.ExponentialBuckets(1, 2.5, 10),
	})
)

// Upload metrics.
var (
	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total cards saved to the collection.",
	})

	UploadFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_failures_total",
		Help:      "Total failed card saves by stage (storage, insert).",
	}, []string{"stage"})
)

// Collection metrics, refreshed by the audit sweep.
var (
	CollectionValueCAD = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "collection_value_cad",
		Help:      "Derived total of present card estimates in CAD.",
	})

	CollectionCards = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "collection_cards",
		Help:      "Number of cards in the collection.",
	})

	OrphanedObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orphaned_objects",
		Help:      "Stored image objects with no referencing card row.",
	})
)

// Notification metrics.
var (
	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total notification send failures.",
	})
)
