package kafka_middleware

import (
	"context"
	"time"

	"aerolabel/pkg/kafka"
	"aerolabel/pkg/metrics"
)

func MetricsProducerMiddleware(m *metrics.KafkaMetrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.Observe(metrics.DirectionProduce, msg.Topic, err, time.Since(start).Seconds())
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.KafkaMetrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.Observe(metrics.DirectionConsume, msg.Topic, err, time.Since(start).Seconds())
		return err
	}
}
