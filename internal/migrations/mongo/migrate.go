package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aerolabel/internal/migrations/mongo/validators"
	"aerolabel/internal/review/repository"
	"aerolabel/pkg/logger"
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	PredictionsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "review_status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "review_status", Value: 1}, {Key: "is_new_class", Value: 1}}},
	}

	LabelsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "file_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "original_file_name", Value: 1}}},
		{Keys: bson.D{{Key: "type_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
)

// Collections lists every collection the service reads or writes.
func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		repository.PredictionsCollection: {
			Indexes:   PredictionsIndexes,
			Validator: validators.PredictionValidator,
		},
		repository.LabelsCollection: {
			Indexes:   LabelsIndexes,
			Validator: validators.LabelValidator,
		},
		repository.CountersCollection: {
			Validator: validators.LabelCounterValidator,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}

	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
