// Package ingest turns predictions from the inference pipeline into pending
// review records. Predictions arrive on a Kafka topic or over HTTP.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"aerolabel/internal/review/repository"
	"aerolabel/internal/review/validator"
	"aerolabel/pkg/kafka"
	"aerolabel/pkg/logger"
	"aerolabel/pkg/model"
	"aerolabel/pkg/sanitizer"
)

type Ingestor struct {
	predictions repository.PredictionRepository
	files       repository.FileStore
	validator   *validator.ReviewValidator
	log         *logger.Logger
}

func NewIngestor(predictions repository.PredictionRepository, files repository.FileStore, v *validator.ReviewValidator, log *logger.Logger) *Ingestor {
	return &Ingestor{
		predictions: predictions,
		files:       files,
		validator:   v,
		log:         log,
	}
}

// Ingest stores pred as pending. Validation failures are returned as
// validator.ValidationErrors; anything else is a storage failure.
func (i *Ingestor) Ingest(ctx context.Context, pred *model.AIPrediction) (*model.IngestResult, error) {
	sanitizer.SanitizePrediction(pred)
	if err := i.validator.ValidatePrediction(pred); err != nil {
		return nil, err
	}

	// The pipeline never decides review outcomes.
	pred.ReviewStatus = model.ReviewPending
	pred.ReviewedAt = nil
	pred.LabelID = ""

	result := &model.IngestResult{ResourceID: pred.ResourceID}

	excluded, err := i.files.IsExcluded(ctx, pred.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("exclusion lookup failed: %w", err)
	}
	if excluded {
		i.log.Info("Skipping prediction for excluded image", "resource_id", pred.ResourceID)
		result.Outcome = model.IngestExcluded
		return result, nil
	}

	inserted, err := i.predictions.Insert(ctx, pred)
	if err != nil {
		return nil, fmt.Errorf("prediction insert failed: %w", err)
	}
	if !inserted {
		i.log.Debug("Prediction already ingested", "resource_id", pred.ResourceID)
		result.Outcome = model.IngestDuplicate
		return result, nil
	}

	i.log.Info("Prediction queued for review",
		"resource_id", pred.ResourceID,
		"is_new_class", pred.IsNewClass,
	)
	result.Outcome = model.IngestQueued
	return result, nil
}

// Handle is a kafka.MessageHandler. Malformed or invalid payloads are permanent
// failures; storage failures are retried by the consumer.
func (i *Ingestor) Handle(ctx context.Context, msg kafka.Message) error {
	var pred model.AIPrediction
	if err := msg.DecodeValue(&pred); err != nil {
		return err
	}

	if _, err := i.Ingest(ctx, &pred); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return kafka.NewPermanentError("invalid prediction payload", err)
		}
		return kafka.NewTransientError("prediction ingest failed", err)
	}
	return nil
}
