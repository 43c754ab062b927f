package appointmentRepo

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

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

// Save upserts the whole appointment; duration is recomputed first.
func (r *mongoAppointmentRepo) Save(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	prepare(appt)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"id": appt.ID}, appt, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save appointment %s: %w", appt.ID, err)
	}
	return nil
}

func (r *mongoAppointmentRepo) MarkCancelled(ctx context.Context, id string, c models.Cancellation) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$ne": models.StatusCancelled}}
	update := bson.M{"$set": bson.M{
		"status":       models.StatusCancelled,
		"cancellation": c,
		"updatedAt":    time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to cancel appointment %s: %w", id, err)
	}

	// Nothing matched: tell "missing" apart from "already cancelled".
	count, cerr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if cerr != nil {
		return nil, fmt.Errorf("failed to cancel appointment %s: %w", id, cerr)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrAlreadyCancelled
}

func (r *mongoAppointmentRepo) SetRefund(ctx context.Context, id string, refund models.RefundRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if refund.UpdatedAt.IsZero() {
		refund.UpdatedAt = time.Now().UTC()
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"refund": refund, "updatedAt": refund.UpdatedAt}})
	if err != nil {
		return fmt.Errorf("failed to record refund on appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func prepare(appt *models.Appointment) {
	now := time.Now().UTC()
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	appt.SyncDuration()
}
