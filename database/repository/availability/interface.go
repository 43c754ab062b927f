package availabilityRepo

import (
	"context"

	"appointly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AvailabilityRepository stores weekly schedules for businesses, locations and providers.
type AvailabilityRepository interface {
	GetByScope(ctx context.Context, scope models.Scope, scopeID string) (*models.Availability, error)
	ListAll(ctx context.Context) ([]models.Availability, error)
	// ListByLocation returns the location's own record, the records of its
	// providers and any business-wide records, in stored order.
	ListByLocation(ctx context.Context, locationID string) ([]models.Availability, error)
	Save(ctx context.Context, a *models.Availability) error
	Watch(ctx context.Context) (<-chan models.ChangeEvent, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo builds a repository over the "availability" collection.
func NewMongoAvailabilityRepo(db *mongo.Database) AvailabilityRepository {
	return &mongoAvailabilityRepo{coll: db.Collection("availability")}
}
