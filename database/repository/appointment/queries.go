package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"appointly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var byStart = options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})

func (r *mongoAppointmentRepo) ListByServiceProvider(ctx context.Context, providerID string) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"serviceProviderIds": providerID})
}

func (r *mongoAppointmentRepo) ListByLocation(ctx context.Context, locationID string) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"serviceLocationId": locationID})
}

func (r *mongoAppointmentRepo) ListByClient(ctx context.Context, clientID string) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"clientIds": clientID})
}

func (r *mongoAppointmentRepo) ListByProvidersInRange(ctx context.Context, providerIDs []string, from, to time.Time) ([]models.Appointment, error) {
	if len(providerIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, overlapFilter(providerIDs, from, to))
}

// overlapFilter matches live appointments of providerIDs intersecting [from, to).
func overlapFilter(providerIDs []string, from, to time.Time) bson.M {
	return bson.M{
		"serviceProviderIds": bson.M{"$in": providerIDs},
		"status":             bson.M{"$ne": models.StatusCancelled},
		"startTime":          bson.M{"$lt": to},
		"endTime":            bson.M{"$gt": from},
	}
}

func (r *mongoAppointmentRepo) find(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, byStart)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}
