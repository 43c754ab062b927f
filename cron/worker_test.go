package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"appointly/database/repository/memstore"
	"appointly/models"
	"appointly/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGateway struct {
	err   error
	calls []models.RefundInput
}

func (g *stubGateway) CreatePayment(ctx context.Context, in models.PaymentInput) (*models.PaymentResult, error) {
	return nil, errors.New("not used")
}

func (g *stubGateway) RefundPayment(ctx context.Context, in models.RefundInput) (*models.RefundResult, error) {
	g.calls = append(g.calls, in)
	if g.err != nil {
		return nil, g.err
	}
	return &models.RefundResult{RefundID: "re_9", Status: "succeeded", AmountCents: in.AmountCents}, nil
}

func seedCancelled(t *testing.T, store *memstore.Store) {
	t.Helper()
	start := time.Date(2024, 7, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Appointments().Save(context.Background(), &models.Appointment{
		ID:                 "a1",
		ClientIDs:          []string{"c1"},
		ServiceProviderIDs: []string{"A"},
		StartTime:          start,
		EndTime:            start.Add(time.Hour),
		Status:             models.StatusCancelled,
		PaymentID:          "pi_1",
		AmountPaidCents:    4500,
	}))
}

func refundTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, _, err := tasks.NewRefundRetryTask(models.RefundRetryPayload{AppointmentID: "a1", PaymentID: "pi_1", AmountCents: 4000, Reason: "sick"})
	require.NoError(t, err)
	return task
}

func TestRefundTaskIssuesAndRecordsRefund(t *testing.T) {
	store := memstore.New()
	seedCancelled(t, store)
	gw := &stubGateway{}
	handler := handleRefundTask(RefundWorkerDeps{Payments: gw, Appointments: store.Appointments()}, zap.NewNop())

	require.NoError(t, handler(context.Background(), refundTask(t)))
	require.Len(t, gw.calls, 1)
	assert.Equal(t, "cancel-refund:a1", gw.calls[0].IdempotencyKey)

	appt, err := store.Appointments().GetByID(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, appt.Refund)
	assert.Equal(t, "re_9", appt.Refund.RefundID)
	assert.Equal(t, int64(4000), appt.Refund.AmountCents)
}

func TestRefundTaskFailureIsRetried(t *testing.T) {
	store := memstore.New()
	seedCancelled(t, store)
	handler := handleRefundTask(RefundWorkerDeps{Payments: &stubGateway{err: errors.New("stripe timeout")}, Appointments: store.Appointments()}, zap.NewNop())

	err := handler(context.Background(), refundTask(t))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestRefundTaskBadPayloadSkipsRetry(t *testing.T) {
	handler := handleRefundTask(RefundWorkerDeps{Payments: &stubGateway{}}, zap.NewNop())
	payload, _ := json.Marshal("not an object")

	err := handler(context.Background(), asynq.NewTask(tasks.TypeRefundRetry, payload))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
