package app

import (
	"context"
	"fmt"

	"github.com/viant/afs"

	"aerolabel/internal/health"
	"aerolabel/internal/images"
	"aerolabel/internal/ingest"
	lockHandler "aerolabel/internal/locks/handler"
	"aerolabel/internal/locks/lease"
	lockService "aerolabel/internal/locks/service"
	reviewHandler "aerolabel/internal/review/handler"
	"aerolabel/internal/review/repository"
	reviewService "aerolabel/internal/review/service"
	"aerolabel/internal/review/validator"
	"aerolabel/pkg/config"
	"aerolabel/pkg/kafka"
	kafka_middleware "aerolabel/pkg/kafka/middleware"
	"aerolabel/pkg/metrics"
)

type stores struct {
	predictions repository.PredictionRepository
	labels      repository.LabelRepository
	pinger      health.Pinger
}

// NewLabelingApplication wires the lock service, review workflow and
// prediction ingest onto one HTTP server. Mongo must already be connected
// when cfg selects the mongo backend.
func NewLabelingApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	m, err := metrics.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	a := NewApplication(cfg, m)

	st := newStores(cfg)

	files, err := repository.NewFileStore(ctx, afs.New(), cfg.ImagesDir, cfg.LabeledDir, cfg.ExcludedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image directories: %w", err)
	}

	leases := lease.NewStore(cfg.LeaseShards)
	locks := lockService.NewLockService(leases, cfg, m.Locks)
	a.AddWorker(lockService.NewSweeper(locks, cfg.SweepInterval, cfg.Log))

	reviewValidator := validator.NewReviewValidator(cfg.Log)

	publisher := reviewService.NewNoopDecisionPublisher()
	if cfg.Kafka != nil && cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, cfg.Kafka.DecisionsTopic, cfg.Kafka.DLQTopic, cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to create decision producer: %w", err)
		}
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m.Kafka))
		a.AddCloser("decision producer", producer)
		publisher = reviewService.NewKafkaDecisionPublisher(producer)
	}

	review := reviewService.NewReviewService(cfg, reviewService.Dependencies{
		Predictions: st.predictions,
		Labels:      st.labels,
		Files:       files,
		Publisher:   publisher,
		Validator:   reviewValidator,
		Metrics:     m.Review,
	})

	ingestor := ingest.NewIngestor(st.predictions, files, reviewValidator, cfg.Log)
	if cfg.Kafka != nil && cfg.Kafka.Enabled {
		consumer, err := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.PredictionsTopic, cfg.Kafka.ConsumerGroup, cfg.Kafka.DLQTopic, ingestor.Handle, cfg.Log)
		if err != nil {
			a.Shutdown()
			return nil, fmt.Errorf("failed to create prediction consumer: %w", err)
		}
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m.Kafka))
		a.AddWorker(newConsumerWorker(consumer, cfg.Log))
	}

	a.SetApp(
		health.NewHealthHandler(st.pinger, cfg.Log),
		lockHandler.NewLockHandler(locks, cfg.Log),
		reviewHandler.NewReviewHandler(review, cfg.Log),
		ingest.NewIngestHandler(ingestor),
		images.NewImageHandler(images.NewCatalog(files, leases, reviewValidator, cfg.Log), cfg.Log),
	)

	cfg.Log.Info("Labeling application initialized",
		"store_backend", cfg.StoreBackend,
		"kafka_enabled", cfg.Kafka != nil && cfg.Kafka.Enabled,
	)
	return a, nil
}

func newStores(cfg *config.Config) stores {
	if cfg.UsesMongo() {
		return stores{
			predictions: repository.NewMongoPredictionRepository(cfg),
			labels:      repository.NewMongoLabelRepository(cfg),
			pinger:      cfg.Client.Mongo,
		}
	}
	return stores{
		predictions: repository.NewMemoryPredictionRepository(),
		labels:      repository.NewMemoryLabelRepository(),
	}
}
