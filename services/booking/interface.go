package booking

import (
	"context"

	"appointly/models"
)

// BookingSessionService walks a client from provider selection to a booked appointment.
type BookingSessionService interface {
	InitiateSession(ctx context.Context, clientID, locationID, appointmentTypeID string, sel models.ProviderSelection) (*models.BookingSession, error)
	GetSession(ctx context.Context, clientID, sessionID string) (*models.BookingSession, error)
	UpdateSession(ctx context.Context, clientID, sessionID string, upd models.SessionUpdate) (*models.BookingSession, error)
	ConfirmSession(ctx context.Context, clientID, sessionID string, pay *models.BookingPayment) (*models.Appointment, error)
	CancelSession(ctx context.Context, clientID, sessionID string) error
}

// BookingService books one slot with a server-side capacity check.
type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Appointment, error)
}
