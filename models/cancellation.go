package models

import "time"

// CancellationRequest is the body of the cancel endpoint.
type CancellationRequest struct {
	AppointmentID         string `json:"appointmentId"`
	CancellationFeeCents  int64  `json:"cancellationFeeCents"`
	Reason                string `json:"reason"`
	AcceptCancellationFee *bool  `json:"acceptCancellationFee,omitempty"`
}

// Accepted reports whether the caller confirmed the fee.
func (r CancellationRequest) Accepted() bool {
	return r.AcceptCancellationFee != nil && *r.AcceptCancellationFee
}

type CancellationResponse struct {
	RequiresConfirmation bool           `json:"requiresConfirmation"`
	CancellationFeeCents *int64         `json:"cancellationFeeCents,omitempty"`
	Appointment          *Appointment   `json:"appointment,omitempty"`
	Success              *bool          `json:"success,omitempty"`
	Refund               *RefundSummary `json:"refund,omitempty"`
}

// RefundSummary is the refund outcome reported to the caller.
type RefundSummary struct {
	AmountCents int64  `json:"amountCents"`
	Status      string `json:"status"`
	RefundID    string `json:"refundId,omitempty"`
}

// CancellationQuote is a computed fee waiting for the client's confirmation.
type CancellationQuote struct {
	AppointmentID string    `json:"appointmentId"`
	FeeCents      int64     `json:"feeCents"`
	Reason        string    `json:"reason"`
	QuotedAt      time.Time `json:"quotedAt"`
}

// CancellationState is where an appointment sits in the two-phase cancel flow.
type CancellationState string

const (
	CancellationIdle        CancellationState = "idle"
	CancellationAwaitingFee CancellationState = "awaitingFeeConfirmation"
	CancellationCancelled   CancellationState = "cancelled"
)
