package cancellation

import (
	"context"
	"errors"
	"strings"
	"time"

	appointmentRepo "appointly/database/repository/appointment"
	"appointly/metrics"
	"appointly/models"
	"appointly/services/notification"
	"appointly/services/payment"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var cancellationTracer = otel.Tracer("appointly/services/cancellation")

type DefaultCancellationService struct {
	Appointments appointmentRepo.AppointmentRepository
	Quotes       QuoteStore
	Policy       FeePolicy
	Payments     payment.Gateway
	RefundQueue  RefundQueue
	Notifier     notification.NotificationService
	Metrics      *metrics.BookingMetrics
	Logger       *zap.Logger
	Clock        func() time.Time
}

func (s *DefaultCancellationService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *DefaultCancellationService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultCancellationService) policy() FeePolicy {
	if s.Policy == nil {
		return FlatPolicy{}
	}
	return s.Policy
}

// Cancel handles both calls. Without acceptCancellationFee it is a dry run:
// a zero fee cancels at once, a positive fee is quoted and nothing changes.
// With acceptCancellationFee the quoted fee must be resubmitted unchanged.
// A failing store or gateway call leaves the appointment and its quote as
// they were, so the same call can be repeated.
func (s *DefaultCancellationService) Cancel(ctx context.Context, req models.CancellationRequest) (*models.CancellationResponse, error) {
	phase := "dryRun"
	if req.Accepted() {
		phase = "confirm"
	}
	ctx, span := cancellationTracer.Start(ctx, "cancellation.Cancel", trace.WithAttributes(
		attribute.String("appointment.id", req.AppointmentID),
		attribute.String("cancellation.phase", phase),
		attribute.Int64("cancellation.base_fee_cents", req.CancellationFeeCents),
	))
	defer span.End()

	resp, err := s.cancel(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Metrics.ObserveCancellation(phase, outcomeFor(err))
		return nil, err
	}
	outcome := "cancelled"
	if resp.RequiresConfirmation {
		outcome = "awaitingConfirmation"
	}
	s.Metrics.ObserveCancellation(phase, outcome)
	return resp, nil
}

func (s *DefaultCancellationService) cancel(ctx context.Context, req models.CancellationRequest) (*models.CancellationResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	appt, err := s.load(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}
	now := s.now()
	fee := s.policy().Fee(appt, req.CancellationFeeCents, now)

	if !req.Accepted() {
		if fee == 0 {
			return s.commit(ctx, appt, 0, req.Reason, now)
		}
		quote := models.CancellationQuote{AppointmentID: appt.ID, FeeCents: fee, Reason: req.Reason, QuotedAt: now.UTC()}
		if err := s.Quotes.Save(ctx, quote); err != nil {
			return nil, externalError("failed to record the cancellation fee", err)
		}
		s.logger().Info("cancellation fee quoted", zap.String("appointmentId", appt.ID), zap.Int64("feeCents", fee))
		return &models.CancellationResponse{RequiresConfirmation: true, CancellationFeeCents: &fee}, nil
	}

	quote, err := s.Quotes.Get(ctx, appt.ID)
	switch {
	case errors.Is(err, errQuoteNotFound):
		if fee > 0 {
			return nil, ErrNoPendingQuote
		}
		return s.commit(ctx, appt, 0, req.Reason, now)
	case err != nil:
		return nil, externalError("failed to load the cancellation fee", err)
	}
	if quote.FeeCents != req.CancellationFeeCents {
		return nil, ErrFeeMismatch
	}
	return s.commit(ctx, appt, quote.FeeCents, req.Reason, now)
}

func (s *DefaultCancellationService) load(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, id)
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, externalError("failed to load appointment", err)
	}
	return appt, nil
}

// commit writes the cancellation, then handles the refund and notifications.
// Nothing after the conditional write can undo it.
func (s *DefaultCancellationService) commit(ctx context.Context, appt *models.Appointment, fee int64, reason string, now time.Time) (*models.CancellationResponse, error) {
	cancelled, err := s.Appointments.MarkCancelled(ctx, appt.ID, models.Cancellation{
		Time:       now.UTC(),
		Reason:     reason,
		FeeApplied: fee > 0,
		FeeCents:   fee,
	})
	switch {
	case errors.Is(err, appointmentRepo.ErrAlreadyCancelled):
		return nil, ErrAlreadyCancelled
	case errors.Is(err, appointmentRepo.ErrNotFound):
		return nil, ErrAppointmentNotFound
	case err != nil:
		return nil, externalError("failed to cancel appointment", err)
	}

	if err := s.Quotes.Delete(ctx, appt.ID); err != nil {
		s.logger().Warn("failed to clear cancellation quote", zap.String("appointmentId", appt.ID), zap.Error(err))
	}
	s.logger().Info("appointment cancelled",
		zap.String("appointmentId", appt.ID),
		zap.Int64("feeCents", fee),
		zap.String("reason", reason),
	)

	success := true
	resp := &models.CancellationResponse{Appointment: cancelled, Success: &success}
	if fee > 0 {
		resp.CancellationFeeCents = &fee
	}
	resp.Refund = s.refund(ctx, cancelled, fee, reason)
	if resp.Refund != nil {
		cancelled.Refund = &models.RefundRecord{
			RefundID:    resp.Refund.RefundID,
			AmountCents: resp.Refund.AmountCents,
			Status:      resp.Refund.Status,
			UpdatedAt:   s.now().UTC(),
		}
	}

	if s.Notifier != nil {
		if err := s.Notifier.AppointmentCancelled(ctx, cancelled); err != nil {
			s.logger().Warn("cancellation notification failed", zap.String("appointmentId", appt.ID), zap.Error(err))
		}
	}
	return resp, nil
}

// refund returns what was paid minus the fee. A gateway failure is handed to
// the retry queue and reported as "queued".
func (s *DefaultCancellationService) refund(ctx context.Context, appt *models.Appointment, fee int64, reason string) *models.RefundSummary {
	amount := appt.AmountPaidCents - fee
	if appt.PaymentID == "" || amount <= 0 || s.Payments == nil {
		return nil
	}
	summary := &models.RefundSummary{AmountCents: amount}
	res, err := s.Payments.RefundPayment(ctx, models.RefundInput{
		AppointmentID:  appt.ID,
		PaymentID:      appt.PaymentID,
		AmountCents:    amount,
		Reason:         reason,
		IdempotencyKey: "cancel-refund:" + appt.ID,
	})
	if err == nil {
		summary.RefundID = res.RefundID
		summary.Status = res.Status
	} else {
		s.logger().Warn("refund failed, queueing retry",
			zap.String("appointmentId", appt.ID),
			zap.String("paymentId", appt.PaymentID),
			zap.Error(err),
		)
		summary.Status = "queued"
		if s.RefundQueue == nil {
			summary.Status = "failed"
		} else if qerr := s.RefundQueue.EnqueueRefundRetry(ctx, models.RefundRetryPayload{
			AppointmentID: appt.ID,
			PaymentID:     appt.PaymentID,
			AmountCents:   amount,
			Reason:        reason,
		}); qerr != nil {
			s.logger().Error("failed to queue refund retry", zap.String("appointmentId", appt.ID), zap.Error(qerr))
			summary.Status = "failed"
		}
	}
	s.Metrics.ObserveRefund(summary.Status)

	if err := s.Appointments.SetRefund(ctx, appt.ID, models.RefundRecord{
		RefundID:    summary.RefundID,
		AmountCents: amount,
		Status:      summary.Status,
		UpdatedAt:   s.now().UTC(),
	}); err != nil {
		s.logger().Error("failed to record refund", zap.String("appointmentId", appt.ID), zap.Error(err))
	}
	return summary
}

// State reports where the appointment is in the cancel flow.
func (s *DefaultCancellationService) State(ctx context.Context, appointmentID string) (models.CancellationState, error) {
	if strings.TrimSpace(appointmentID) == "" {
		return "", validationError("appointmentId is required")
	}
	appt, err := s.load(ctx, appointmentID)
	if err != nil {
		return "", err
	}
	if appt.IsCancelled() {
		return models.CancellationCancelled, nil
	}
	_, err = s.Quotes.Get(ctx, appointmentID)
	switch {
	case errors.Is(err, errQuoteNotFound):
		return models.CancellationIdle, nil
	case err != nil:
		return "", externalError("failed to load the cancellation fee", err)
	}
	return models.CancellationAwaitingFee, nil
}

func validate(req models.CancellationRequest) error {
	switch {
	case strings.TrimSpace(req.AppointmentID) == "":
		return validationError("appointmentId is required")
	case strings.TrimSpace(req.Reason) == "":
		return validationError("reason is required")
	case req.CancellationFeeCents < 0:
		return validationError("cancellationFeeCents cannot be negative")
	}
	return nil
}

func outcomeFor(err error) string {
	var cerr *CancellationError
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return "error"
}
