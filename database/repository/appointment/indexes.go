package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes on the appointments collection.
func (r *mongoAppointmentRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Capacity checks: provider + time window.
		{
			Keys:    bson.D{{Key: "serviceProviderIds", Value: 1}, {Key: "startTime", Value: 1}, {Key: "endTime", Value: 1}},
			Options: options.Index().SetName("provider_start_end_idx"),
		},
		{
			Keys:    bson.D{{Key: "serviceLocationId", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("location_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "clientIds", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("client_start_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
