package models

import (
	"errors"
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusBooked    AppointmentStatus = "booked"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusBooked, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Cancellation is recorded on an appointment once it is cancelled.
type Cancellation struct {
	Time       time.Time `bson:"time" json:"time"`
	Reason     string    `bson:"reason" json:"reason"`
	FeeApplied bool      `bson:"feeApplied" json:"feeApplied"`
	FeeCents   int64     `bson:"feeCents" json:"feeCents"`
}

// RefundRecord tracks the refund issued after a cancellation.
type RefundRecord struct {
	RefundID    string    `bson:"refundId,omitempty" json:"refundId,omitempty"`
	AmountCents int64     `bson:"amountCents" json:"amountCents"`
	Status      string    `bson:"status" json:"status"` // "succeeded", "pending", "queued", "failed"
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Appointment struct {
	ID                 string            `bson:"id" json:"id"`
	ClientIDs          []string          `bson:"clientIds" json:"clientIds"`
	ServiceProviderIDs []string          `bson:"serviceProviderIds" json:"serviceProviderIds"`
	AppointmentTypeID  string            `bson:"appointmentTypeId,omitempty" json:"appointmentTypeId,omitempty"`
	ServiceLocationID  string            `bson:"serviceLocationId" json:"serviceLocationId"`
	StartTime          time.Time         `bson:"startTime" json:"startTime"`
	EndTime            time.Time         `bson:"endTime" json:"endTime"`
	DurationMinutes    int               `bson:"durationMinutes" json:"durationMinutes"` // always EndTime - StartTime
	Status             AppointmentStatus `bson:"status" json:"status"`
	Cancellation       *Cancellation     `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	PaymentID          string            `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	AmountPaidCents    int64             `bson:"amountPaidCents,omitempty" json:"amountPaidCents,omitempty"`
	Currency           string            `bson:"currency,omitempty" json:"currency,omitempty"`
	Refund             *RefundRecord     `bson:"refund,omitempty" json:"refund,omitempty"`
	Notes              string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// SyncDuration recomputes DurationMinutes from the start and end times.
func (a *Appointment) SyncDuration() {
	a.DurationMinutes = int(a.EndTime.Sub(a.StartTime) / time.Minute)
}

func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// HasProvider reports whether providerID is assigned to the appointment.
func (a *Appointment) HasProvider(providerID string) bool {
	for _, id := range a.ServiceProviderIDs {
		if id == providerID {
			return true
		}
	}
	return false
}

// HasClient reports whether clientID attends the appointment.
func (a *Appointment) HasClient(clientID string) bool {
	for _, id := range a.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}

// Overlaps uses half-open intervals: touching endpoints do not overlap.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

func (a *Appointment) Validate() error {
	if len(a.ClientIDs) == 0 {
		return errors.New("at least one client is required")
	}
	if len(a.ServiceProviderIDs) == 0 {
		return errors.New("at least one service provider is required")
	}
	if a.ServiceLocationID == "" {
		return errors.New("serviceLocationId is required")
	}
	if !a.StartTime.Before(a.EndTime) {
		return errors.New("startTime must be before endTime")
	}
	if !a.Status.Valid() {
		return fmt.Errorf("invalid status %q", a.Status)
	}
	if a.IsCancelled() != (a.Cancellation != nil) {
		return errors.New("cancellation details must be present exactly when status is cancelled")
	}
	return nil
}
