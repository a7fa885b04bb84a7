package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionProduce = "produce"
	DirectionConsume = "consume"
)

type KafkaMetrics struct {
	MessagesTotal   *prometheus.CounterVec // direction, topic, result
	MessageDuration *prometheus.HistogramVec
}

func NewKafkaMetrics(registry *prometheus.Registry) (*KafkaMetrics, error) {
	m := &KafkaMetrics{
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aerolabel_kafka_messages_total",
				Help: "Kafka messages produced or consumed by topic and result",
			},
			[]string{"direction", "topic", "result"},
		),
		MessageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aerolabel_kafka_message_duration_seconds",
				Help:    "Time spent producing or handling one Kafka message",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"direction", "topic"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register Kafka metrics: %w", err)
	}
	return m, nil
}

func (m *KafkaMetrics) Collect(ch chan<- prometheus.Metric) {
	m.MessagesTotal.Collect(ch)
	m.MessageDuration.Collect(ch)
}

func (m *KafkaMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.MessagesTotal.Describe(ch)
	m.MessageDuration.Describe(ch)
}

func (m *KafkaMetrics) Observe(direction, topic string, err error, seconds float64) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.MessagesTotal.WithLabelValues(direction, topic, result).Inc()
	m.MessageDuration.WithLabelValues(direction, topic).Observe(seconds)
}
