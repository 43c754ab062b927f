package models

// PaymentInput describes a charge captured at booking time.
type PaymentInput struct {
	AppointmentID   string            `json:"appointmentId"`
	ClientID        string            `json:"clientId"`
	AmountCents     int64             `json:"amountCents"`
	Currency        string            `json:"currency"`
	PaymentMethodID string            `json:"paymentMethodId"`
	Description     string            `json:"description,omitempty"`
	IdempotencyKey  string            `json:"idempotencyKey,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type PaymentResult struct {
	PaymentID   string `json:"paymentId"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

type RefundInput struct {
	AppointmentID  string `json:"appointmentId"`
	PaymentID      string `json:"paymentId"`
	AmountCents    int64  `json:"amountCents"`
	Reason         string `json:"reason,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type RefundResult struct {
	RefundID    string `json:"refundId"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amountCents"`
}

// RefundRetryPayload is queued when a refund could not be issued inline.
type RefundRetryPayload struct {
	AppointmentID string `json:"appointmentId"`
	PaymentID     string `json:"paymentId"`
	AmountCents   int64  `json:"amountCents"`
	Reason        string `json:"reason"`
}
