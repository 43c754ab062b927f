package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the availability queries rely on.
func (r *mongoAvailabilityRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// One record per scope.
		{
			Keys:    bson.D{{Key: "scope", Value: 1}, {Key: "scopeId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("scope_scopeId_unique"),
		},
		{
			Keys:    bson.D{{Key: "locationId", Value: 1}},
			Options: options.Index().SetName("location_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create availability indexes: %w", err)
	}
	return nil
}
