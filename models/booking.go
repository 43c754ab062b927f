package models

import "time"

// BookingRequest asks for one slot on one date.
type BookingRequest struct {
	ClientID          string            `json:"clientId"`
	LocationID        string            `json:"locationId"`
	AppointmentTypeID string            `json:"appointmentTypeId,omitempty"`
	Selection         ProviderSelection `json:"provider"`
	Date              string            `json:"date"` // "YYYY-MM-DD"
	Slot              DailySlot         `json:"slot"`
	Payment           *BookingPayment   `json:"payment,omitempty"`
	Notes             string            `json:"notes,omitempty"`
}

// BookingPayment is the optional up-front charge for a booking.
type BookingPayment struct {
	AmountCents     int64  `json:"amountCents"`
	Currency        string `json:"currency,omitempty"`
	PaymentMethodID string `json:"paymentMethodId"`
}

// BookingSession carries a client's in-progress selection between requests.
type BookingSession struct {
	SessionID         string            `json:"sessionId"`
	ClientID          string            `json:"clientId"`
	LocationID        string            `json:"locationId"`
	AppointmentTypeID string            `json:"appointmentTypeId,omitempty"`
	Selection         ProviderSelection `json:"provider"`
	Date              string            `json:"date,omitempty"`
	Slot              *DailySlot        `json:"slot,omitempty"`
	Dates             []string          `json:"dates"`
	Slots             []DailySlot       `json:"slots"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// SessionUpdate changes part of a session. Nil fields are left as they are.
type SessionUpdate struct {
	Selection *ProviderSelection `json:"provider,omitempty"`
	Date      *string            `json:"date,omitempty"`
	Slot      *DailySlot         `json:"slot,omitempty"`
}

// AvailabilityView is what a client sees for one location and provider selection.
type AvailabilityView struct {
	LocationID string            `json:"locationId"`
	Selection  ProviderSelection `json:"provider"`
	Dates      []string          `json:"dates"`
	Date       string            `json:"date,omitempty"`
	Slots      []DailySlot       `json:"slots"`
	ComputedAt time.Time         `json:"computedAt"`
}
