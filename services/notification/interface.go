package notification

import (
	"context"
	"fmt"

	"appointly/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService tells clients and providers about appointment changes.
type NotificationService interface {
	AppointmentBooked(ctx context.Context, appt *models.Appointment) error
	AppointmentCancelled(ctx context.Context, appt *models.Appointment) error
}

// Sender is satisfied by *messaging.Client.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotificationService pushes to per-user FCM topics ("client-<id>", "provider-<id>").
type FCMNotificationService struct {
	Sender Sender
	Logger *zap.Logger
}

func NewFCMNotificationService(sender Sender, logger *zap.Logger) *FCMNotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMNotificationService{Sender: sender, Logger: logger}
}

func (s *FCMNotificationService) AppointmentBooked(ctx context.Context, appt *models.Appointment) error {
	when := appt.StartTime.Format("Mon Jan 2, 15:04")
	data := map[string]string{"appointmentId": appt.ID, "event": "booked"}
	return s.fanOut(ctx, appt,
		"Appointment confirmed", "You're booked for "+when+".",
		"New appointment", "A client booked "+when+".",
		data)
}

func (s *FCMNotificationService) AppointmentCancelled(ctx context.Context, appt *models.Appointment) error {
	when := appt.StartTime.Format("Mon Jan 2, 15:04")
	data := map[string]string{"appointmentId": appt.ID, "event": "cancelled"}
	clientBody := "Your appointment on " + when + " was cancelled."
	if appt.Cancellation != nil && appt.Cancellation.FeeApplied {
		clientBody += fmt.Sprintf(" A fee of %.2f applies.", float64(appt.Cancellation.FeeCents)/100)
	}
	return s.fanOut(ctx, appt,
		"Appointment cancelled", clientBody,
		"Appointment cancelled", "The appointment on "+when+" was cancelled.",
		data)
}

// fanOut sends to every client and provider, returning the first failure.
func (s *FCMNotificationService) fanOut(ctx context.Context, appt *models.Appointment, clientTitle, clientBody, providerTitle, providerBody string, data map[string]string) error {
	var firstErr error
	for _, id := range appt.ClientIDs {
		if err := s.send(ctx, "client-"+id, clientTitle, clientBody, data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, id := range appt.ServiceProviderIDs {
		if err := s.send(ctx, "provider-"+id, providerTitle, providerBody, data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *FCMNotificationService) send(ctx context.Context, topic, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "appointments",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
	if _, err := s.Sender.Send(ctx, msg); err != nil {
		s.Logger.Warn("push notification failed", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("failed to send FCM message to %s: %w", topic, err)
	}
	return nil
}

// NoopNotificationService is used when push credentials are not configured.
type NoopNotificationService struct{}

func (NoopNotificationService) AppointmentBooked(context.Context, *models.Appointment) error {
	return nil
}

func (NoopNotificationService) AppointmentCancelled(context.Context, *models.Appointment) error {
	return nil
}
