package appointmentRepo

import (
	"context"
	"fmt"

	"appointly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Watch streams appointment changes until ctx is done. Requires a replica set.
// Deletes carry no location.
func (r *mongoAppointmentRepo) Watch(ctx context.Context) (<-chan models.ChangeEvent, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$project", Value: bson.M{
			"operationType":                  1,
			"fullDocument.serviceLocationId": 1,
		}}},
	}
	stream, err := r.coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("failed to open appointment change stream: %w", err)
	}

	out := make(chan models.ChangeEvent)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		defer func() {
			if err := stream.Err(); err != nil && ctx.Err() == nil {
				zap.L().Error("appointment change stream ended", zap.Error(err))
			}
		}()
		for stream.Next(ctx) {
			var doc struct {
				FullDocument struct {
					ServiceLocationID string `bson:"serviceLocationId"`
				} `bson:"fullDocument"`
			}
			if err := stream.Decode(&doc); err != nil {
				// Without a location the event wakes every subscriber.
				zap.L().Warn("failed to decode appointment change event", zap.Error(err))
			}
			select {
			case out <- models.ChangeEvent{Collection: "appointments", LocationID: doc.FullDocument.ServiceLocationID}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
