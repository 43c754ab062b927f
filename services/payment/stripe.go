package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appointly/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

type paymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type refunds interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// StripeGateway charges cards through PaymentIntents and refunds against them.
type StripeGateway struct {
	intents  paymentIntents
	refunds  refunds
	currency string
	logger   *zap.Logger
}

// NewStripeGateway builds a gateway bound to secretKey rather than the global stripe.Key.
func NewStripeGateway(secretKey, defaultCurrency string, logger *zap.Logger) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return newStripeGateway(sc.PaymentIntents, sc.Refunds, defaultCurrency, logger)
}

func newStripeGateway(pi paymentIntents, rf refunds, currency string, logger *zap.Logger) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeGateway{intents: pi, refunds: rf, currency: strings.ToLower(currency), logger: logger}
}

func (g *StripeGateway) CreatePayment(ctx context.Context, in models.PaymentInput) (*models.PaymentResult, error) {
	if in.AmountCents <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	if in.PaymentMethodID == "" {
		return nil, errors.New("payment method is required")
	}
	currency := g.currency
	if in.Currency != "" {
		currency = strings.ToLower(in.Currency)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(in.AmountCents),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(in.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	params.Context = ctx
	if in.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(in.IdempotencyKey)
	}
	params.AddMetadata("appointmentId", in.AppointmentID)
	params.AddMetadata("clientId", in.ClientID)
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		g.logger.Error("stripe payment intent failed", zap.String("appointmentId", in.AppointmentID), zap.Error(err))
		return nil, fmt.Errorf("stripe payment failed: %w", err)
	}
	return &models.PaymentResult{
		PaymentID:   pi.ID,
		Status:      string(pi.Status),
		AmountCents: pi.Amount,
		Currency:    string(pi.Currency),
	}, nil
}

func (g *StripeGateway) RefundPayment(ctx context.Context, in models.RefundInput) (*models.RefundResult, error) {
	if in.PaymentID == "" {
		return nil, errors.New("payment id is required for a refund")
	}
	if in.AmountCents <= 0 {
		return nil, errors.New("refund amount must be positive")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(in.PaymentID),
		Amount:        stripe.Int64(in.AmountCents),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	if in.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(in.IdempotencyKey)
	}
	params.AddMetadata("appointmentId", in.AppointmentID)
	if in.Reason != "" {
		params.AddMetadata("cancellationReason", in.Reason)
	}

	r, err := g.refunds.New(params)
	if err != nil {
		g.logger.Error("stripe refund failed", zap.String("paymentId", in.PaymentID), zap.Error(err))
		return nil, fmt.Errorf("stripe refund failed: %w", err)
	}
	return &models.RefundResult{
		RefundID:    r.ID,
		Status:      string(r.Status),
		AmountCents: r.Amount,
	}, nil
}
