package providerRepo

import (
	"context"

	"appointly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ProviderRepository reads the provider roster.
type ProviderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	ListByLocation(ctx context.Context, locationID string) ([]models.Provider, error)
	Save(ctx context.Context, p *models.Provider) error
	EnsureIndexes(ctx context.Context) error
}

type mongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo builds a repository over the "providers" collection.
func NewMongoProviderRepo(db *mongo.Database) ProviderRepository {
	return &mongoProviderRepo{coll: db.Collection("providers")}
}
