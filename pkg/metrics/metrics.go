// Package metrics provides the Prometheus collectors exposed by the labeling service.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the metric collectors for the service.
type Metrics struct {
	registry *prometheus.Registry
	Locks    *LockMetrics
	Review   *ReviewMetrics
	HTTP     *HTTPMetrics
	Kafka    *KafkaMetrics
}

// New creates a registry and registers every collector on it.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}

	lockMetrics, err := NewLockMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create lock metrics: %w", err)
	}

	reviewMetrics, err := NewReviewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create review metrics: %w", err)
	}

	httpMetrics, err := NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	kafkaMetrics, err := NewKafkaMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Locks:    lockMetrics,
		Review:   reviewMetrics,
		HTTP:     httpMetrics,
		Kafka:    kafkaMetrics,
	}, nil
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
