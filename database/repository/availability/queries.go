package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"appointly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// storedOrder sorts by insertion; any-provider resolution depends on it.
var storedOrder = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

func (r *mongoAvailabilityRepo) ListAll(ctx context.Context) ([]models.Availability, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoAvailabilityRepo) ListByLocation(ctx context.Context, locationID string) ([]models.Availability, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"scope": models.ScopeLocation, "scopeId": locationID},
		bson.M{"scope": models.ScopeProvider, "locationId": locationID},
		bson.M{"scope": models.ScopeBusiness},
	}}
	return r.find(ctx, filter)
}

func (r *mongoAvailabilityRepo) find(ctx context.Context, filter bson.M) ([]models.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, storedOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.Availability
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	return records, nil
}
