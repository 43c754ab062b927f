package cancellation

import (
	"context"
	"errors"
	"testing"
	"time"

	"appointly/database/repository/memstore"
	"appointly/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

type fakeGateway struct {
	refunds   []models.RefundInput
	refundErr error
}

func (g *fakeGateway) CreatePayment(ctx context.Context, in models.PaymentInput) (*models.PaymentResult, error) {
	return nil, errors.New("not used")
}

func (g *fakeGateway) RefundPayment(ctx context.Context, in models.RefundInput) (*models.RefundResult, error) {
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, in)
	return &models.RefundResult{RefundID: "re_1", Status: "succeeded", AmountCents: in.AmountCents}, nil
}

type fakeQueue struct {
	queued []models.RefundRetryPayload
}

func (q *fakeQueue) EnqueueRefundRetry(ctx context.Context, payload models.RefundRetryPayload) error {
	q.queued = append(q.queued, payload)
	return nil
}

type fakeNotifier struct {
	cancelled []string
}

func (n *fakeNotifier) AppointmentBooked(ctx context.Context, appt *models.Appointment) error {
	return nil
}

func (n *fakeNotifier) AppointmentCancelled(ctx context.Context, appt *models.Appointment) error {
	n.cancelled = append(n.cancelled, appt.ID)
	return nil
}

// failingQuotes fails every write.
type failingQuotes struct {
	QuoteStore
}

func (failingQuotes) Save(ctx context.Context, q models.CancellationQuote) error {
	return errors.New("redis unavailable")
}

type fixture struct {
	svc      *DefaultCancellationService
	store    *memstore.Store
	gateway  *fakeGateway
	queue    *fakeQueue
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		store:    memstore.New(),
		gateway:  &fakeGateway{},
		queue:    &fakeQueue{},
		notifier: &fakeNotifier{},
	}
	f.svc = &DefaultCancellationService{
		Appointments: f.store.Appointments(),
		Quotes:       &RedisQuoteStore{Client: client},
		Policy:       FlatPolicy{},
		Payments:     f.gateway,
		RefundQueue:  f.queue,
		Notifier:     f.notifier,
		Clock:        func() time.Time { return now },
	}
	return f
}

func (f *fixture) seed(t *testing.T, id string, paidCents int64) {
	t.Helper()
	appt := models.Appointment{
		ID:                 id,
		ClientIDs:          []string{"c1"},
		ServiceProviderIDs: []string{"A"},
		ServiceLocationID:  "loc-1",
		StartTime:          now.Add(2 * time.Hour),
		EndTime:            now.Add(3 * time.Hour),
		Status:             models.StatusBooked,
	}
	if paidCents > 0 {
		appt.PaymentID = "pi_" + id
		appt.AmountPaidCents = paidCents
	}
	require.NoError(t, f.store.Appointments().Save(context.Background(), &appt))
}

func accept() *bool {
	v := true
	return &v
}

func (f *fixture) status(t *testing.T, id string) models.AppointmentStatus {
	t.Helper()
	appt, err := f.store.Appointments().GetByID(context.Background(), id)
	require.NoError(t, err)
	return appt.Status
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var cerr *CancellationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, code, cerr.Code)
}

func TestDryRunWithoutFeeCancelsImmediately(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 0)

	resp, err := f.svc.Cancel(context.Background(), models.CancellationRequest{AppointmentID: "a1", Reason: "sick"})
	require.NoError(t, err)
	assert.False(t, resp.RequiresConfirmation)
	require.NotNil(t, resp.Appointment)
	assert.Equal(t, models.StatusCancelled, resp.Appointment.Status)
	require.NotNil(t, resp.Appointment.Cancellation)
	assert.False(t, resp.Appointment.Cancellation.FeeApplied)
	assert.Equal(t, now, resp.Appointment.Cancellation.Time)
	assert.Equal(t, "sick", resp.Appointment.Cancellation.Reason)
	assert.True(t, *resp.Success)
	assert.Nil(t, resp.Refund)
	assert.Equal(t, []string{"a1"}, f.notifier.cancelled)
}

func TestFeeNeedsExactlyOneConfirmation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 0)
	ctx := context.Background()

	resp, err := f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel"})
	require.NoError(t, err)
	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, int64(500), *resp.CancellationFeeCents)
	assert.Nil(t, resp.Appointment)

	// Repeating the call without the accept flag never cancels.
	resp, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel"})
	require.NoError(t, err)
	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, models.StatusBooked, f.status(t, "a1"))

	state, err := f.svc.State(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.CancellationAwaitingFee, state)

	resp, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel", AcceptCancellationFee: accept()})
	require.NoError(t, err)
	assert.False(t, resp.RequiresConfirmation)
	assert.Equal(t, models.StatusCancelled, resp.Appointment.Status)
	assert.True(t, resp.Appointment.Cancellation.FeeApplied)
	assert.Equal(t, int64(500), resp.Appointment.Cancellation.FeeCents)

	state, err = f.svc.State(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.CancellationCancelled, state)

	_, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel", AcceptCancellationFee: accept()})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestExplicitlyDeclinedFeeIsADryRun(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 0)
	declined := false

	resp, err := f.svc.Cancel(context.Background(), models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel", AcceptCancellationFee: &declined})
	require.NoError(t, err)
	assert.True(t, resp.RequiresConfirmation)
	assert.Equal(t, models.StatusBooked, f.status(t, "a1"))
}

func TestConfirmRequiresMatchingQuote(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 0)
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel", AcceptCancellationFee: accept()})
	assert.ErrorIs(t, err, ErrNoPendingQuote)

	_, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel"})
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 200, Reason: "travel", AcceptCancellationFee: accept()})
	assert.ErrorIs(t, err, ErrFeeMismatch)
	assert.Equal(t, models.StatusBooked, f.status(t, "a1"))
}

func TestNoticePolicyWaivesFeeWithEnoughNotice(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 0)
	f.svc.Policy = NoticePolicy{NoticeHours: 1}

	resp, err := f.svc.Cancel(context.Background(), models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel"})
	require.NoError(t, err)
	assert.False(t, resp.RequiresConfirmation)
	assert.Equal(t, models.StatusCancelled, resp.Appointment.Status)
	assert.False(t, resp.Appointment.Cancellation.FeeApplied)
}

func TestNoticePolicy(t *testing.T) {
	appt := &models.Appointment{StartTime: now.Add(24 * time.Hour)}
	assert.Equal(t, int64(0), NoticePolicy{NoticeHours: 24}.Fee(appt, 500, now))
	assert.Equal(t, int64(500), NoticePolicy{NoticeHours: 25}.Fee(appt, 500, now))
	assert.Equal(t, int64(500), NoticePolicy{}.Fee(appt, 500, now))
	assert.Equal(t, int64(0), NoticePolicy{}.Fee(appt, 0, now))
}

func TestCancellationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, models.CancellationRequest{Reason: "x"})
	assertCode(t, err, CodeValidation)
	_, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", Reason: "   "})
	assertCode(t, err, CodeValidation)
	_, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", Reason: "x", CancellationFeeCents: -1})
	assertCode(t, err, CodeValidation)
	_, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "missing", Reason: "x"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 0)
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel"})
	require.NoError(t, err)

	f.store.SetError(errors.New("mongo down"))
	_, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel", AcceptCancellationFee: accept()})
	assertCode(t, err, CodeExternal)

	f.store.SetError(nil)
	state, err := f.svc.State(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.CancellationAwaitingFee, state, "the quote survives so the confirm can be retried")

	_, err = f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel", AcceptCancellationFee: accept()})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, f.status(t, "a1"))
}

func TestQuoteFailureDoesNotCancel(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 0)
	f.svc.Quotes = failingQuotes{f.svc.Quotes}

	_, err := f.svc.Cancel(context.Background(), models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel"})
	assertCode(t, err, CodeExternal)
	assert.Equal(t, models.StatusBooked, f.status(t, "a1"))
}

func TestCancelRefundsPaidAmountLessFee(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 4500)
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel"})
	require.NoError(t, err)
	resp, err := f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "travel", AcceptCancellationFee: accept()})
	require.NoError(t, err)

	require.NotNil(t, resp.Refund)
	assert.Equal(t, int64(4000), resp.Refund.AmountCents)
	assert.Equal(t, "succeeded", resp.Refund.Status)
	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, "pi_a1", f.gateway.refunds[0].PaymentID)
	assert.Equal(t, "cancel-refund:a1", f.gateway.refunds[0].IdempotencyKey)

	stored, err := f.store.Appointments().GetByID(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, stored.Refund)
	assert.Equal(t, "re_1", stored.Refund.RefundID)
}

func TestFailedRefundIsQueued(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 4500)
	f.gateway.refundErr = errors.New("stripe timeout")

	resp, err := f.svc.Cancel(context.Background(), models.CancellationRequest{AppointmentID: "a1", Reason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, resp.Appointment.Status)
	require.NotNil(t, resp.Refund)
	assert.Equal(t, "queued", resp.Refund.Status)
	require.Len(t, f.queue.queued, 1)
	assert.Equal(t, models.RefundRetryPayload{AppointmentID: "a1", PaymentID: "pi_a1", AmountCents: 4500, Reason: "sick"}, f.queue.queued[0])
}

func TestFeeCoveringPaymentSkipsRefund(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 500)
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "late"})
	require.NoError(t, err)
	resp, err := f.svc.Cancel(ctx, models.CancellationRequest{AppointmentID: "a1", CancellationFeeCents: 500, Reason: "late", AcceptCancellationFee: accept()})
	require.NoError(t, err)
	assert.Nil(t, resp.Refund)
	assert.Empty(t, f.gateway.refunds)
}

func TestStateIdle(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", 0)

	state, err := f.svc.State(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.CancellationIdle, state)

	_, err = f.svc.State(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
