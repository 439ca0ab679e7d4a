// Package metrics exports Backend activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ZaguanLabs/calinga"
)

const namespace = "calinga"

// Cache operation results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Collector implements calinga.Observer.
type Collector struct {
	// Resolutions counts Read results by the tier that served them.
	Resolutions *prometheus.CounterVec

	// ServiceRequests counts translation fetches by outcome.
	ServiceRequests *prometheus.CounterVec

	// ServiceRequestDuration tracks translation fetch latency.
	ServiceRequestDuration prometheus.Histogram

	// CacheOperations counts cache reads and writes by result.
	CacheOperations *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Total number of translation reads by serving tier",
			},
			[]string{"source"},
		),
		ServiceRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_requests_total",
				Help:      "Total number of translation service requests",
			},
			[]string{"outcome"},
		),
		ServiceRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "service_request_duration_seconds",
				Help:      "Translation service request duration in seconds",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		CacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Total number of cache operations",
			},
			[]string{"operation", "result"},
		),
	}
}

// ObserveResolution records the tier a read was served from.
func (c *Collector) ObserveResolution(source calinga.Source) {
	c.Resolutions.WithLabelValues(string(source)).Inc()
}

// ObserveServiceRequest records one translation fetch.
func (c *Collector) ObserveServiceRequest(outcome string, elapsed time.Duration) {
	c.ServiceRequests.WithLabelValues(outcome).Inc()
	c.ServiceRequestDuration.Observe(elapsed.Seconds())
}

// ObserveCacheOperation records one cache read or write.
func (c *Collector) ObserveCacheOperation(operation string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	c.CacheOperations.WithLabelValues(operation, result).Inc()
}

var _ calinga.Observer = (*Collector)(nil)
