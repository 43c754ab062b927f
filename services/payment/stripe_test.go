package payment

import (
	"context"
	"errors"
	"testing"

	"appointly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

type fakeIntents struct {
	params *stripe.PaymentIntentParams
	err    error
}

func (f *fakeIntents) New(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_123", Status: stripe.PaymentIntentStatusSucceeded, Amount: *p.Amount, Currency: stripe.Currency(*p.Currency)}, nil
}

type fakeRefunds struct {
	params *stripe.RefundParams
	err    error
}

func (f *fakeRefunds) New(p *stripe.RefundParams) (*stripe.Refund, error) {
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.Refund{ID: "re_456", Status: stripe.RefundStatusSucceeded, Amount: *p.Amount}, nil
}

func TestCreatePayment(t *testing.T) {
	pi := &fakeIntents{}
	g := newStripeGateway(pi, &fakeRefunds{}, "USD", nil)

	res, err := g.CreatePayment(context.Background(), models.PaymentInput{
		AppointmentID:   "a1",
		ClientID:        "c1",
		AmountCents:     4500,
		PaymentMethodID: "pm_card_visa",
		IdempotencyKey:  "book:a1",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", res.PaymentID)
	assert.Equal(t, int64(4500), res.AmountCents)
	assert.Equal(t, "usd", *pi.params.Currency)
	assert.Equal(t, "a1", pi.params.Metadata["appointmentId"])
	assert.Equal(t, "book:a1", *pi.params.IdempotencyKey)
	assert.True(t, *pi.params.Confirm)
}

func TestCreatePaymentValidation(t *testing.T) {
	g := newStripeGateway(&fakeIntents{}, &fakeRefunds{}, "", nil)
	_, err := g.CreatePayment(context.Background(), models.PaymentInput{AmountCents: 0, PaymentMethodID: "pm"})
	assert.Error(t, err)
	_, err = g.CreatePayment(context.Background(), models.PaymentInput{AmountCents: 100})
	assert.Error(t, err)
}

func TestRefundPayment(t *testing.T) {
	rf := &fakeRefunds{}
	g := newStripeGateway(&fakeIntents{}, rf, "", nil)

	res, err := g.RefundPayment(context.Background(), models.RefundInput{AppointmentID: "a1", PaymentID: "pi_123", AmountCents: 4000, Reason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, "re_456", res.RefundID)
	assert.Equal(t, "succeeded", res.Status)
	assert.Equal(t, "pi_123", *rf.params.PaymentIntent)
	assert.Equal(t, int64(4000), *rf.params.Amount)
}

func TestRefundPaymentWrapsGatewayErrors(t *testing.T) {
	boom := errors.New("card_declined")
	g := newStripeGateway(&fakeIntents{}, &fakeRefunds{err: boom}, "", nil)

	_, err := g.RefundPayment(context.Background(), models.RefundInput{PaymentID: "pi_1", AmountCents: 10})
	assert.ErrorIs(t, err, boom)

	_, err = g.RefundPayment(context.Background(), models.RefundInput{AmountCents: 10})
	assert.Error(t, err)
}
