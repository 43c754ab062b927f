package availabilityRepo

import (
	"context"
	"fmt"

	"appointly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type changeDoc struct {
	FullDocument struct {
		Scope      models.Scope `bson:"scope"`
		ScopeID    string       `bson:"scopeId"`
		LocationID string       `bson:"locationId"`
	} `bson:"fullDocument"`
}

// Watch streams schedule changes until ctx is done. Requires a replica set.
func (r *mongoAvailabilityRepo) Watch(ctx context.Context) (<-chan models.ChangeEvent, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}}}}},
	}
	stream, err := r.coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("failed to open availability change stream: %w", err)
	}

	out := make(chan models.ChangeEvent)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		defer func() {
			if err := stream.Err(); err != nil && ctx.Err() == nil {
				zap.L().Error("availability change stream ended", zap.Error(err))
			}
		}()
		for stream.Next(ctx) {
			var doc changeDoc
			if err := stream.Decode(&doc); err != nil {
				// Without a location the event wakes every subscriber.
				zap.L().Warn("failed to decode availability change event", zap.Error(err))
			}
			ev := models.ChangeEvent{Collection: "availability", LocationID: doc.FullDocument.LocationID}
			if doc.FullDocument.Scope == models.ScopeLocation {
				ev.LocationID = doc.FullDocument.ScopeID
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
