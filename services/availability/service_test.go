package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"appointly/database/repository/memstore"
	"appointly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, now time.Time) (*DefaultAvailabilityService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	svc := &DefaultAvailabilityService{
		Availability: store.Availability(),
		Appointments: store.Appointments(),
		Providers:    store.Providers(),
		Location:     time.UTC,
		HorizonDays:  14,
		Clock:        func() time.Time { return now },
	}
	return svc, store
}

func seedLocation(t *testing.T, store *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range []models.Availability{
		providerRecord("A", time.Tuesday, models.IntPtr(1), models.DailySlot{Start: "09:00", End: "10:00"}),
		providerRecord("B", time.Tuesday, models.IntPtr(1), models.DailySlot{Start: "09:00", End: "10:00"}),
		{Scope: models.ScopeLocation, ScopeID: "loc-1", Blocked: []models.BlockedRange{{Start: "2024-07-09", Reason: "inventory"}}},
	} {
		rec := rec
		require.NoError(t, store.Availability().Save(ctx, &rec))
	}
	for _, p := range []models.Provider{{ID: "A", LocationID: "loc-1", Active: true}, {ID: "B", LocationID: "loc-1", Active: true}} {
		p := p
		require.NoError(t, store.Providers().Save(ctx, &p))
	}
}

func TestGetViewComputesDatesThenSlots(t *testing.T) {
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	svc, store := newTestService(t, now)
	seedLocation(t, store)

	appt := booked("a1", "A", tuesday, "09:00", "10:00")
	require.NoError(t, store.Appointments().Save(context.Background(), &appt))

	view, err := svc.GetView(context.Background(), ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider(), Date: tuesday})
	require.NoError(t, err)
	// The second Tuesday is closed for the whole location.
	assert.Equal(t, []string{tuesday}, view.Dates)
	assert.Equal(t, tuesday, view.Date)
	assert.Equal(t, []models.DailySlot{{Start: "09:00", End: "10:00"}}, view.Slots)

	view, err = svc.GetView(context.Background(), ViewQuery{LocationID: "loc-1", Selection: models.SpecificProvider("A"), Date: tuesday})
	require.NoError(t, err)
	assert.Empty(t, view.Dates)
	assert.Empty(t, view.Date, "a date that dropped out is cleared")
	assert.Empty(t, view.Slots)
}

func TestGetViewAppliesBusinessClosure(t *testing.T) {
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	svc, store := newTestService(t, now)
	seedLocation(t, store)

	holiday := models.Availability{Scope: models.ScopeBusiness, ScopeID: "acme", Blocked: []models.BlockedRange{{Start: tuesday, Reason: "holiday"}}}
	require.NoError(t, store.Availability().Save(context.Background(), &holiday))

	view, err := svc.GetView(context.Background(), ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider(), Date: tuesday})
	require.NoError(t, err)
	assert.NotContains(t, view.Dates, tuesday)
	assert.Empty(t, view.Date)
	assert.Empty(t, view.Slots)
}

func TestGetViewValidation(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	ctx := context.Background()

	_, err := svc.GetView(ctx, ViewQuery{Selection: models.AnyProvider()})
	assertCode(t, err, CodeValidation)

	_, err = svc.GetView(ctx, ViewQuery{LocationID: "loc-1"})
	assertCode(t, err, CodeValidation)

	_, err = svc.GetView(ctx, ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider(), Date: "tomorrow"})
	assertCode(t, err, CodeValidation)
}

func TestGetViewStoreFailure(t *testing.T) {
	svc, store := newTestService(t, time.Now())
	store.SetError(errors.New("connection reset"))

	_, err := svc.GetView(context.Background(), ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider()})
	assertCode(t, err, CodeExternal)
}

func TestSaveAndGetAvailability(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	ctx := context.Background()

	bad := providerRecord("A", time.Monday, nil, models.DailySlot{Start: "11:00", End: "10:00"})
	assertCode(t, svc.SaveAvailability(ctx, &bad), CodeValidation)

	orphan := providerRecord("A", time.Monday, nil, hourlySlots(9, 10)...)
	orphan.LocationID = ""
	assertCode(t, svc.SaveAvailability(ctx, &orphan), CodeValidation)

	good := providerRecord("A", time.Monday, nil, hourlySlots(9, 10)...)
	require.NoError(t, svc.SaveAvailability(ctx, &good))
	assert.NotEmpty(t, good.ID)

	got, err := svc.GetAvailability(ctx, models.ScopeProvider, "A")
	require.NoError(t, err)
	assert.Equal(t, good.ID, got.ID)

	_, err = svc.GetAvailability(ctx, models.ScopeProvider, "nobody")
	assertCode(t, err, CodeNotFound)

	_, err = svc.GetAvailability(ctx, "planet", "earth")
	assertCode(t, err, CodeValidation)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var aerr *AvailabilityError
	require.True(t, errors.As(err, &aerr), "expected AvailabilityError, got %v", err)
	assert.Equal(t, code, aerr.Code)
}
