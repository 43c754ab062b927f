package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	appointmentRepo "appointly/database/repository/appointment"
	"appointly/metrics"
	"appointly/models"
	"appointly/services/availability"
	"appointly/services/notification"
	"appointly/services/payment"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var bookingTracer = otel.Tracer("appointly/services/booking")

// DefaultBookingService implements BookingService and BookingSessionService.
type DefaultBookingService struct {
	Availability availability.AvailabilityService
	Appointments appointmentRepo.AppointmentRepository
	Sessions     *SessionStore
	Locks        *DayLocker
	Payments     payment.Gateway // optional; bookings without payment skip it
	Notifier     notification.NotificationService
	Metrics      *metrics.BookingMetrics
	Logger       *zap.Logger
	Location     *time.Location
	Currency     string
	Clock        func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *DefaultBookingService) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// CreateBooking resolves the provider, takes the provider-day lock, re-checks
// capacity against freshly loaded appointments, charges the client if asked,
// and inserts the appointment in a transaction that checks capacity again.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.Create", trace.WithAttributes(
		attribute.String("location.id", req.LocationID),
		attribute.String("booking.date", req.Date),
		attribute.String("booking.slot", req.Slot.Key()),
		attribute.String("provider.selection", req.Selection.String()),
	))
	defer span.End()

	appt, err := s.createBooking(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Metrics.ObserveBooking(outcomeFor(err))
		return nil, err
	}
	span.SetAttributes(attribute.String("appointment.id", appt.ID), attribute.String("provider.id", appt.ServiceProviderIDs[0]))
	s.Metrics.ObserveBooking("booked")
	return appt, nil
}

func (s *DefaultBookingService) createBooking(ctx context.Context, req models.BookingRequest) (*models.Appointment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	loc := s.loc()
	day, err := models.ParseDate(req.Date, loc)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}
	start, end, err := req.Slot.On(req.Date, loc)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}
	if !start.After(s.now()) {
		return nil, NewValidationError("the selected slot has already started")
	}
	dayEnd := day.AddDate(0, 0, 1)

	in, err := s.Availability.LoadInput(ctx, req.LocationID, req.Selection, day, dayEnd)
	if err != nil {
		return nil, newExternalError("failed to load availability", err)
	}
	slots, err := availability.BuildSlotList(req.Date, *in)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}
	if !offered(slots, req.Slot) {
		return nil, ErrSlotUnavailable
	}
	providerID, err := availability.ResolveProvider(req.Date, req.Slot, *in)
	if err != nil {
		return nil, ErrSlotUnavailable
	}

	lock, err := s.Locks.Acquire(ctx, providerID, req.Date)
	if errors.Is(err, ErrLockBusy) {
		s.Metrics.ObserveLockContention()
		return nil, ErrSlotBusy
	}
	if err != nil {
		return nil, newExternalError("failed to lock provider schedule", err)
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			s.logger().Warn("booking lock release failed", zap.String("providerId", providerID), zap.Error(err))
		}
	}()

	capacity, maxPerDay := limitsFor(*in, providerID)
	dayAppts, err := s.Appointments.ListByProvidersInRange(ctx, []string{providerID}, day, dayEnd)
	if err != nil {
		return nil, newExternalError("failed to reload appointments", err)
	}
	if !availability.HasCapacityAt(providerID, start, end, capacity, dayAppts) {
		return nil, ErrSlotUnavailable
	}
	if maxPerDay != nil && startsOn(dayAppts, day, dayEnd) >= *maxPerDay {
		return nil, ErrSlotUnavailable
	}

	appt := &models.Appointment{
		ID:                 uuid.New().String(),
		ClientIDs:          []string{req.ClientID},
		ServiceProviderIDs: []string{providerID},
		AppointmentTypeID:  req.AppointmentTypeID,
		ServiceLocationID:  req.LocationID,
		StartTime:          start,
		EndTime:            end,
		Status:             models.StatusBooked,
		Notes:              req.Notes,
	}
	appt.SyncDuration()

	if req.Payment != nil {
		if err := s.charge(ctx, appt, req); err != nil {
			return nil, err
		}
	}

	err = s.Appointments.InsertTransactionally(ctx, appt, func(existing []models.Appointment) error {
		if !availability.HasCapacityAt(providerID, start, end, capacity, existing) {
			return ErrSlotUnavailable
		}
		return nil
	})
	if err != nil {
		s.refundAfterFailedInsert(ctx, appt)
		if errors.Is(err, ErrSlotUnavailable) {
			return nil, ErrSlotUnavailable
		}
		return nil, newExternalError("failed to save appointment", err)
	}

	s.logger().Info("appointment booked",
		zap.String("appointmentId", appt.ID),
		zap.String("providerId", providerID),
		zap.String("clientId", req.ClientID),
		zap.Time("start", start),
	)
	if s.Notifier != nil {
		if err := s.Notifier.AppointmentBooked(ctx, appt); err != nil {
			s.logger().Warn("booking notification failed", zap.String("appointmentId", appt.ID), zap.Error(err))
		}
	}
	return appt, nil
}

func (s *DefaultBookingService) charge(ctx context.Context, appt *models.Appointment, req models.BookingRequest) error {
	if s.Payments == nil {
		return NewValidationError("payments are not enabled")
	}
	currency := req.Payment.Currency
	if currency == "" {
		currency = s.Currency
	}
	res, err := s.Payments.CreatePayment(ctx, models.PaymentInput{
		AppointmentID:   appt.ID,
		ClientID:        req.ClientID,
		AmountCents:     req.Payment.AmountCents,
		Currency:        currency,
		PaymentMethodID: req.Payment.PaymentMethodID,
		Description:     "Appointment " + appt.StartTime.Format(time.RFC3339),
		IdempotencyKey:  "book:" + appt.ID,
	})
	if err != nil {
		return newExternalError("payment failed", err)
	}
	appt.PaymentID = res.PaymentID
	appt.AmountPaidCents = res.AmountCents
	appt.Currency = currency
	return nil
}

// refundAfterFailedInsert returns money taken for an appointment that was never stored.
func (s *DefaultBookingService) refundAfterFailedInsert(ctx context.Context, appt *models.Appointment) {
	if appt.PaymentID == "" || s.Payments == nil {
		return
	}
	_, err := s.Payments.RefundPayment(ctx, models.RefundInput{
		AppointmentID:  appt.ID,
		PaymentID:      appt.PaymentID,
		AmountCents:    appt.AmountPaidCents,
		Reason:         "booking failed",
		IdempotencyKey: "book-refund:" + appt.ID,
	})
	if err != nil {
		s.logger().Error("refund after failed booking insert failed",
			zap.String("appointmentId", appt.ID),
			zap.String("paymentId", appt.PaymentID),
			zap.Error(err),
		)
	}
}

func validateRequest(req models.BookingRequest) error {
	switch {
	case strings.TrimSpace(req.ClientID) == "":
		return NewValidationError("clientId is required")
	case strings.TrimSpace(req.LocationID) == "":
		return NewValidationError("locationId is required")
	case req.Selection.IsZero():
		return NewValidationError("provider selection is required")
	}
	if err := req.Slot.Validate(); err != nil {
		return NewValidationError(err.Error())
	}
	if req.Payment != nil && (req.Payment.AmountCents <= 0 || req.Payment.PaymentMethodID == "") {
		return NewValidationError("payment needs a positive amount and a payment method")
	}
	return nil
}

func limitsFor(in availability.Input, providerID string) (models.Capacity, *int) {
	for _, rec := range in.Records {
		if rec.ScopeID != providerID {
			continue
		}
		var prov *models.Provider
		if p, ok := in.Providers[providerID]; ok {
			prov = &p
		}
		return availability.ResolveCapacity(rec, prov), rec.MaxPerDay
	}
	return models.Limited(0), nil
}

func startsOn(appts []models.Appointment, day, dayEnd time.Time) int {
	n := 0
	for _, a := range appts {
		if !a.IsCancelled() && !a.StartTime.Before(day) && a.StartTime.Before(dayEnd) {
			n++
		}
	}
	return n
}

func offered(slots []models.DailySlot, slot models.DailySlot) bool {
	for _, s := range slots {
		if s.Key() == slot.Key() {
			return true
		}
	}
	return false
}

func outcomeFor(err error) string {
	var berr *BookingError
	if errors.As(err, &berr) {
		switch {
		case berr == ErrSlotUnavailable:
			return "slot_unavailable"
		case berr == ErrSlotBusy:
			return "lock_busy"
		}
		return berr.Code
	}
	return "error"
}
