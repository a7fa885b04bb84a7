package service

import (
	"context"
	"fmt"

	"aerolabel/pkg/kafka"
	"aerolabel/pkg/middleware"
	"aerolabel/pkg/model"
)

const (
	decisionSource        = "aerolabel-review"
	decisionSchemaVersion = "1"
)

// DecisionPublisher announces predictions that left the pending state.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, event model.DecisionEvent) error
}

type kafkaDecisionPublisher struct {
	producer *kafka.Producer
}

func NewKafkaDecisionPublisher(producer *kafka.Producer) DecisionPublisher {
	return &kafkaDecisionPublisher{producer: producer}
}

func (p *kafkaDecisionPublisher) PublishDecision(ctx context.Context, event model.DecisionEvent) error {
	eventType := kafka.EventTypePredictionApproved
	if event.Status == model.ReviewRejected {
		eventType = kafka.EventTypePredictionRejected
	}

	msg, err := kafka.NewMessage().
		WithKey(event.ResourceID).
		WithValue(event).
		WithEventType(eventType).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(decisionSchemaVersion).
		WithSource(decisionSource).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build decision event: %w", err)
	}

	return p.producer.Publish(ctx, msg)
}

type noopDecisionPublisher struct{}

// NewNoopDecisionPublisher is used when Kafka is disabled.
func NewNoopDecisionPublisher() DecisionPublisher {
	return noopDecisionPublisher{}
}

func (noopDecisionPublisher) PublishDecision(context.Context, model.DecisionEvent) error {
	return nil
}
