package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffee_api_requests_total",
			Help: "Total number of requests sent to the coffee shop API",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coffee_api_request_duration_seconds",
			Help:    "Duration of coffee shop API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	SearchResultShops = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coffee_search_result_shops",
			Help:    "Number of shops returned per search",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "web_http_requests_total",
			Help: "Total number of HTTP requests served by route and status",
		},
		[]string{"method", "route", "status"},
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "web_sessions_created_total",
			Help: "Total number of browser sessions issued",
		},
	)
)
