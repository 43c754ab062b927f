package payment

import (
	"context"

	"appointly/models"
)

// Gateway captures payments for bookings and refunds them after cancellation.
type Gateway interface {
	CreatePayment(ctx context.Context, in models.PaymentInput) (*models.PaymentResult, error)
	RefundPayment(ctx context.Context, in models.RefundInput) (*models.RefundResult, error)
}
