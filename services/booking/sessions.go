package booking

import (
	"context"
	"errors"
	"strings"

	"appointly/models"
	"appointly/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) InitiateSession(ctx context.Context, clientID, locationID, appointmentTypeID string, sel models.ProviderSelection) (*models.BookingSession, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, NewValidationError("clientId is required")
	}
	if strings.TrimSpace(locationID) == "" {
		return nil, NewValidationError("locationId is required")
	}
	if sel.IsZero() {
		sel = models.AnyProvider()
	}
	now := s.now()
	session := &models.BookingSession{
		SessionID:         uuid.New().String(),
		ClientID:          clientID,
		LocationID:        locationID,
		AppointmentTypeID: appointmentTypeID,
		Selection:         sel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.refresh(ctx, session); err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, newExternalError("failed to store booking session", err)
	}
	s.logger().Info("booking session started",
		zap.String("sessionId", session.SessionID),
		zap.String("clientId", clientID),
		zap.String("provider", sel.String()),
	)
	return session, nil
}

func (s *DefaultBookingService) GetSession(ctx context.Context, clientID, sessionID string) (*models.BookingSession, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, newExternalError("failed to load booking session", err)
	}
	// Other clients' sessions look the same as missing ones.
	if session.ClientID != clientID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// UpdateSession applies upd, then recomputes dates before slots and drops a
// date or slot that is no longer offered.
func (s *DefaultBookingService) UpdateSession(ctx context.Context, clientID, sessionID string, upd models.SessionUpdate) (*models.BookingSession, error) {
	session, err := s.GetSession(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if upd.Selection != nil {
		if upd.Selection.IsZero() {
			return nil, NewValidationError("provider selection is required")
		}
		session.Selection = *upd.Selection
	}
	if upd.Date != nil {
		if *upd.Date != "" {
			if _, err := models.ParseDate(*upd.Date, s.loc()); err != nil {
				return nil, NewValidationError(err.Error())
			}
		}
		if *upd.Date != session.Date {
			session.Slot = nil
		}
		session.Date = *upd.Date
	}
	if upd.Slot != nil {
		if err := upd.Slot.Validate(); err != nil {
			return nil, NewValidationError(err.Error())
		}
		slot := *upd.Slot
		session.Slot = &slot
	}
	if err := s.refresh(ctx, session); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, newExternalError("failed to store booking session", err)
	}
	return session, nil
}

// ConfirmSession books the session's date and slot and discards the session.
func (s *DefaultBookingService) ConfirmSession(ctx context.Context, clientID, sessionID string, pay *models.BookingPayment) (*models.Appointment, error) {
	session, err := s.GetSession(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Date == "" || session.Slot == nil {
		return nil, NewValidationError("pick a date and a slot before confirming")
	}
	appt, err := s.CreateBooking(ctx, models.BookingRequest{
		ClientID:          session.ClientID,
		LocationID:        session.LocationID,
		AppointmentTypeID: session.AppointmentTypeID,
		Selection:         session.Selection,
		Date:              session.Date,
		Slot:              *session.Slot,
		Payment:           pay,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		s.logger().Warn("failed to clear confirmed booking session", zap.String("sessionId", sessionID), zap.Error(err))
	}
	return appt, nil
}

func (s *DefaultBookingService) CancelSession(ctx context.Context, clientID, sessionID string) error {
	if _, err := s.GetSession(ctx, clientID, sessionID); err != nil {
		return err
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return newExternalError("failed to cancel booking session", err)
	}
	return nil
}

// refresh recomputes the session's dates and, for a still-offered date, its slots.
func (s *DefaultBookingService) refresh(ctx context.Context, session *models.BookingSession) error {
	view, err := s.Availability.GetView(ctx, availability.ViewQuery{
		LocationID: session.LocationID,
		Selection:  session.Selection,
		Date:       session.Date,
	})
	if err != nil {
		var aerr *availability.AvailabilityError
		if errors.As(err, &aerr) && aerr.Code == availability.CodeValidation {
			return NewValidationError(aerr.Message)
		}
		return newExternalError("failed to compute availability", err)
	}
	session.Dates = view.Dates
	if session.Date == "" {
		session.Slots = []models.DailySlot{}
		session.Slot = nil
		return nil
	}
	session.Slots = view.Slots
	session.Date, session.Slot = availability.ReconcileSelection(session.Date, session.Slot, view.Dates, view.Slots)
	if session.Date == "" {
		session.Slots = []models.DailySlot{}
	}
	return nil
}
