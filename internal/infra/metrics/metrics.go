package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ordersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders committed",
		},
	)

	orderCreateFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_create_failures_total",
			Help: "Total number of order transactions rolled back",
		},
	)

	cartOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Total number of cart mutations",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ordersCreatedTotal)
	prometheus.MustRegister(orderCreateFailuresTotal)
	prometheus.MustRegister(cartOperationsTotal)
}

func RecordOrderCreated() {
	ordersCreatedTotal.Inc()
}

func RecordOrderCreateFailure() {
	orderCreateFailuresTotal.Inc()
}

func RecordCartOperation(operation string) {
	cartOperationsTotal.WithLabelValues(operation).Inc()
}
