package realtime

import (
	"context"
	"testing"
	"time"

	"appointly/database/repository/memstore"
	"appointly/models"
	"appointly/services/availability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tuesday = "2024-07-02"

func setup(t *testing.T) (*Broadcaster, *memstore.Store) {
	t.Helper()
	runCtx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return setupWithContext(t, runCtx)
}

func setupWithContext(t *testing.T, runCtx context.Context) (*Broadcaster, *memstore.Store) {
	t.Helper()
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	store := memstore.New()
	ctx := context.Background()
	rec := models.Availability{
		Scope:         models.ScopeProvider,
		ScopeID:       "A",
		LocationID:    "loc-1",
		MaxConcurrent: models.IntPtr(1),
		Weekly:        []models.WeeklyEntry{{Weekday: int(time.Tuesday), Slots: []models.DailySlot{{Start: "09:00", End: "10:00"}}}},
	}
	require.NoError(t, store.Availability().Save(ctx, &rec))
	require.NoError(t, store.Providers().Save(ctx, &models.Provider{ID: "A", LocationID: "loc-1", Active: true}))

	views := &availability.DefaultAvailabilityService{
		Availability: store.Availability(),
		Appointments: store.Appointments(),
		Providers:    store.Providers(),
		Location:     time.UTC,
		HorizonDays:  7,
		Clock:        func() time.Time { return now },
	}
	b := NewBroadcaster(views, nil, store.Availability(), store.Appointments())
	require.NoError(t, b.Start(runCtx))
	return b, store
}

func bookNine(t *testing.T, store *memstore.Store, location string) {
	t.Helper()
	start := time.Date(2024, 7, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Appointments().Save(context.Background(), &models.Appointment{
		ClientIDs:          []string{"c1"},
		ServiceProviderIDs: []string{"A"},
		ServiceLocationID:  location,
		StartTime:          start,
		EndTime:            start.Add(time.Hour),
		Status:             models.StatusBooked,
	}))
}

func next(t *testing.T, sub *Subscription) *models.AvailabilityView {
	t.Helper()
	select {
	case view, ok := <-sub.Updates:
		require.True(t, ok, "updates closed")
		return view
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
		return nil
	}
}

func TestSubscribeDeliversSnapshotThenUpdates(t *testing.T) {
	b, store := setup(t)

	sub, err := b.Subscribe(context.Background(), availability.ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider(), Date: tuesday})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	assert.Equal(t, []string{tuesday}, sub.Snapshot.Dates)
	assert.Equal(t, []models.DailySlot{{Start: "09:00", End: "10:00"}}, sub.Snapshot.Slots)

	bookNine(t, store, "loc-1")
	view := next(t, sub)
	assert.Empty(t, view.Dates)
	assert.Empty(t, view.Slots)
	assert.Empty(t, view.Date)
}

func TestOtherLocationsDoNotWakeSubscriber(t *testing.T) {
	b, store := setup(t)

	sub, err := b.Subscribe(context.Background(), availability.ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider()})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	bookNine(t, store, "loc-2")
	select {
	case <-sub.Updates:
		t.Fatal("unexpected update for another location")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribeClosesUpdates(t *testing.T) {
	b, _ := setup(t)

	sub, err := b.Subscribe(context.Background(), availability.ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider()})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Subscribers())

	sub.Unsubscribe()
	sub.Unsubscribe()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Updates:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, b.Subscribers())
}

func TestSubscribeBeforeStart(t *testing.T) {
	b := NewBroadcaster(nil, nil)
	_, err := b.Subscribe(context.Background(), availability.ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider()})
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestSubscribeRejectsBadQuery(t *testing.T) {
	b, _ := setup(t)
	_, err := b.Subscribe(context.Background(), availability.ViewQuery{Selection: models.AnyProvider()})
	assert.Error(t, err)
	assert.Equal(t, 0, b.Subscribers())
}

// bookingDuringSnapshot books 09:00 right after the first view is computed,
// before Subscribe returns it.
type bookingDuringSnapshot struct {
	availability.AvailabilityService
	book func()
	done bool
}

func (v *bookingDuringSnapshot) GetView(ctx context.Context, q availability.ViewQuery) (*models.AvailabilityView, error) {
	view, err := v.AvailabilityService.GetView(ctx, q)
	if !v.done {
		v.done = true
		v.book()
	}
	return view, err
}

func TestChangeDuringSnapshotTriggersUpdate(t *testing.T) {
	b, store := setup(t)
	b.Views = &bookingDuringSnapshot{
		AvailabilityService: b.Views,
		book:                func() { bookNine(t, store, "loc-1") },
	}

	sub, err := b.Subscribe(context.Background(), availability.ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider(), Date: tuesday})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	assert.Equal(t, []models.DailySlot{{Start: "09:00", End: "10:00"}}, sub.Snapshot.Slots)
	view := next(t, sub)
	assert.Empty(t, view.Slots)
}

func TestClosedStreamsEndSubscriptions(t *testing.T) {
	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	b, _ := setupWithContext(t, runCtx)

	sub, err := b.Subscribe(context.Background(), availability.ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider()})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	stop()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Updates:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	_, err = b.Subscribe(context.Background(), availability.ViewQuery{LocationID: "loc-1", Selection: models.AnyProvider()})
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Equal(t, 0, b.Subscribers())
}
