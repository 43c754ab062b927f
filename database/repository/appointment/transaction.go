package appointmentRepo

import (
	"context"
	"fmt"

	"appointly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoAppointmentRepo) InsertTransactionally(ctx context.Context, appt *models.Appointment, check CapacityCheck) error {
	prepare(appt)

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		cursor, err := r.coll.Find(sc, overlapFilter(appt.ServiceProviderIDs, appt.StartTime, appt.EndTime))
		if err != nil {
			return fmt.Errorf("reload overlapping appointments failed: %w", err)
		}
		var existing []models.Appointment
		if err := cursor.All(sc, &existing); err != nil {
			return fmt.Errorf("decode overlapping appointments failed: %w", err)
		}
		if check != nil {
			if err := check(existing); err != nil {
				return err
			}
		}
		if _, err := r.coll.InsertOne(sc, appt); err != nil {
			return fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil
	}

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}
