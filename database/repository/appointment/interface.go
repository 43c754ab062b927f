package appointmentRepo

import (
	"context"
	"time"

	"appointly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CapacityCheck inspects the live appointments that overlap a new one and
// returns an error to abort the insert.
type CapacityCheck func(existing []models.Appointment) error

type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByServiceProvider(ctx context.Context, providerID string) ([]models.Appointment, error)
	ListByLocation(ctx context.Context, locationID string) ([]models.Appointment, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Appointment, error)
	// ListByProvidersInRange returns live appointments of any of providerIDs that intersect [from, to).
	ListByProvidersInRange(ctx context.Context, providerIDs []string, from, to time.Time) ([]models.Appointment, error)
	Save(ctx context.Context, appt *models.Appointment) error
	// InsertTransactionally re-reads overlapping appointments of the same
	// providers inside a transaction, runs check, and inserts only if it passes.
	InsertTransactionally(ctx context.Context, appt *models.Appointment, check CapacityCheck) error
	// MarkCancelled sets status and cancellation details unless the
	// appointment is already cancelled.
	MarkCancelled(ctx context.Context, id string, c models.Cancellation) (*models.Appointment, error)
	SetRefund(ctx context.Context, id string, refund models.RefundRecord) error
	Watch(ctx context.Context) (<-chan models.ChangeEvent, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo builds a repository over the "appointments" collection.
func NewMongoAppointmentRepo(db *mongo.Database) AppointmentRepository {
	return &mongoAppointmentRepo{coll: db.Collection("appointments")}
}
