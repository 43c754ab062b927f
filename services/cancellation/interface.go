package cancellation

import (
	"context"

	"appointly/models"
)

// CancellationService runs the two-call cancel protocol: a dry run that
// quotes a fee, then a confirmation that accepts it.
type CancellationService interface {
	Cancel(ctx context.Context, req models.CancellationRequest) (*models.CancellationResponse, error)
	State(ctx context.Context, appointmentID string) (models.CancellationState, error)
}

// RefundQueue schedules a refund that could not be issued inline.
type RefundQueue interface {
	EnqueueRefundRetry(ctx context.Context, payload models.RefundRetryPayload) error
}
