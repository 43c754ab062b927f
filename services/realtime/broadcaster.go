package realtime

import (
	"context"
	"errors"
	"sync"

	"appointly/models"
	"appointly/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotStarted is returned by Subscribe before Start has succeeded.
var ErrNotStarted = errors.New("realtime broadcaster is not running")

// Watcher is any store that emits change events; both the availability and
// appointment repositories qualify.
type Watcher interface {
	Watch(ctx context.Context) (<-chan models.ChangeEvent, error)
}

// Subscription delivers full availability views for one query. Updates
// always carries the newest view; a reader that falls behind skips stale ones.
type Subscription struct {
	Snapshot *models.AvailabilityView
	Updates  <-chan *models.AvailabilityView

	cancel context.CancelFunc
}

// Unsubscribe stops updates and closes Updates. It is safe to call twice.
func (s *Subscription) Unsubscribe() {
	s.cancel()
}

type subscriber struct {
	query   availability.ViewQuery
	changed chan struct{}
	cancel  context.CancelFunc
}

// Broadcaster fans store change events out to subscribers, recomputing each
// subscriber's view when its location changes.
type Broadcaster struct {
	Views   availability.AvailabilityService
	Sources []Watcher
	Logger  *zap.Logger

	mu      sync.Mutex
	running bool
	subs    map[string]*subscriber
}

func NewBroadcaster(views availability.AvailabilityService, logger *zap.Logger, sources ...Watcher) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{Views: views, Sources: sources, Logger: logger}
}

// Start opens every source's change stream and dispatches events until ctx ends.
func (b *Broadcaster) Start(ctx context.Context) error {
	streams := make([]<-chan models.ChangeEvent, 0, len(b.Sources))
	for _, src := range b.Sources {
		ch, err := src.Watch(ctx)
		if err != nil {
			return err
		}
		streams = append(streams, ch)
	}

	b.mu.Lock()
	b.running = true
	if b.subs == nil {
		b.subs = make(map[string]*subscriber)
	}
	b.mu.Unlock()

	var wg sync.WaitGroup
	for _, ch := range streams {
		wg.Add(1)
		go func(ch <-chan models.ChangeEvent) {
			defer wg.Done()
			for ev := range ch {
				b.dispatch(ev)
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		b.mu.Lock()
		b.running = false
		for _, sub := range b.subs {
			sub.cancel()
		}
		b.mu.Unlock()
		b.logger().Info("realtime change streams closed")
	}()
	return nil
}

func (b *Broadcaster) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// dispatch marks matching subscribers as changed. An event without a
// location touches everyone.
func (b *Broadcaster) dispatch(ev models.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if ev.LocationID != "" && ev.LocationID != sub.query.LocationID {
			continue
		}
		select {
		case sub.changed <- struct{}{}:
		default:
		}
	}
}

// Subscribe computes the initial view for q and keeps it current until ctx
// ends, Unsubscribe is called or every change stream has closed.
func (b *Broadcaster) Subscribe(ctx context.Context, q availability.ViewQuery) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	id := uuid.New().String()
	sub := &subscriber{query: q, changed: make(chan struct{}, 1), cancel: cancel}
	updates := make(chan *models.AvailabilityView, 1)

	// Register before the snapshot so a change racing it triggers a recompute.
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		cancel()
		return nil, ErrNotStarted
	}
	b.subs[id] = sub
	b.mu.Unlock()

	remove := func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}

	snapshot, err := b.Views.GetView(ctx, q)
	if err != nil {
		cancel()
		remove()
		return nil, err
	}

	go func() {
		defer close(updates)
		defer remove()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.changed:
			}
			view, err := b.Views.GetView(ctx, q)
			if err != nil {
				if ctx.Err() == nil {
					b.logger().Warn("failed to recompute availability for subscriber",
						zap.String("locationId", q.LocationID), zap.Error(err))
				}
				continue
			}
			// Replace an unread view with the newer one.
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- view:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Subscription{Snapshot: snapshot, Updates: updates, cancel: cancel}, nil
}

// Subscribers reports how many subscriptions are live.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
