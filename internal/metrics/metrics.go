package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelplanner",
		Name:      "searches_started_total",
		Help:      "Search requests accepted by the API, by kind.",
	}, []string{"kind"})

	SearchesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelplanner",
		Name:      "searches_completed_total",
		Help:      "Searches the worker finished, by kind and outcome.",
	}, []string{"kind", "outcome"})

	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "travelplanner",
		Name:      "provider_request_duration_seconds",
		Help:      "Upstream provider request latency, by engine.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"engine"})

	ActiveSSEConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "travelplanner",
		Name:      "sse_connections_active",
		Help:      "Currently open server-sent event connections.",
	})

	AlertsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelplanner",
		Name:      "alerts_published_total",
		Help:      "Alerts published to user streams, by severity.",
	}, []string{"severity"})
)
