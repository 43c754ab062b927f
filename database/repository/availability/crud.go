package availabilityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appointly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no record exists for a scope.
var ErrNotFound = errors.New("availability not found")

func (r *mongoAvailabilityRepo) GetByScope(ctx context.Context, scope models.Scope, scopeID string) (*models.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var a models.Availability
	err := r.coll.FindOne(ctx, bson.M{"scope": scope, "scopeId": scopeID}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch %s availability %s: %w", scope, scopeID, err)
	}
	return &a, nil
}

// Save upserts by scope and scopeId, keeping the original id and creation time.
func (r *mongoAvailabilityRepo) Save(ctx context.Context, a *models.Availability) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	a.UpdatedAt = now

	filter := bson.M{"scope": a.Scope, "scopeId": a.ScopeID}
	set := bson.M{
		"locationId":    a.LocationID,
		"weekly":        a.Weekly,
		"blocked":       a.Blocked,
		"maxConcurrent": a.MaxConcurrent,
		"maxPerDay":     a.MaxPerDay,
		"updatedAt":     now,
	}
	onInsert := bson.M{
		"id":        uuid.New().String(),
		"createdAt": now,
	}
	update := bson.M{"$set": set, "$setOnInsert": onInsert}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved models.Availability
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return fmt.Errorf("failed to save %s availability %s: %w", a.Scope, a.ScopeID, err)
	}
	*a = saved
	return nil
}
