package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	reviewerrors "aerolabel/internal/review/errors"
	"aerolabel/pkg/config"
	"aerolabel/pkg/model"
)

const (
	PredictionsCollection = "Predictions"
)

type PredictionRepository interface {
	Get(ctx context.Context, resourceID string) (*model.AIPrediction, error)
	ListByStatus(ctx context.Context, status model.ReviewStatus) ([]*model.AIPrediction, error)
	// TrySetStatus is the only write path for review_status. It reports false
	// when the stored status was not expected at the moment of the write.
	TrySetStatus(ctx context.Context, resourceID string, expected, next model.ReviewStatus) (bool, error)
	SetLabelID(ctx context.Context, resourceID, labelID string) error
	Insert(ctx context.Context, p *model.AIPrediction) (bool, error)
}

type mongoPredictionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoPredictionRepository(cfg *config.Config) PredictionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPredictionRepository{
		cfg:        cfg,
		collection: db.Collection(PredictionsCollection),
		now:        time.Now,
	}
}

func (r *mongoPredictionRepository) Get(ctx context.Context, resourceID string) (*model.AIPrediction, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var p model.AIPrediction
	if err := r.collection.FindOne(ctx, bson.M{"_id": resourceID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", reviewerrors.ErrNotFound, resourceID)
		}
		return nil, fmt.Errorf("failed to find prediction: %w", err)
	}
	return &p, nil
}

func (r *mongoPredictionRepository) ListByStatus(ctx context.Context, status model.ReviewStatus) ([]*model.AIPrediction, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"review_status": status})
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer cursor.Close(ctx)

	var preds []*model.AIPrediction
	if err := cursor.All(ctx, &preds); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	return preds, nil
}

func (r *mongoPredictionRepository) TrySetStatus(ctx context.Context, resourceID string, expected, next model.ReviewStatus) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": resourceID, "review_status": expected}
	update := bson.M{"$set": bson.M{
		"review_status": next,
		"reviewed_at":   r.now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update prediction status: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoPredictionRepository) SetLabelID(ctx context.Context, resourceID, labelID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": resourceID},
		bson.M{"$set": bson.M{"label_id": labelID}},
	)
	if err != nil {
		return fmt.Errorf("failed to set label id: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", reviewerrors.ErrNotFound, resourceID)
	}
	return nil
}

func (r *mongoPredictionRepository) Insert(ctx context.Context, p *model.AIPrediction) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	}

	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert prediction: %w", err)
	}
	return true, nil
}

// withTimeout wraps the context with a timeout unless it is a transaction session.
// An existing shorter deadline is kept.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
