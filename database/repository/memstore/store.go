// Package memstore keeps availability, appointments and providers in memory.
// It backs local runs without MongoDB and the service tests.
package memstore

import (
	"context"
	"sync"

	appointmentRepo "appointly/database/repository/appointment"
	availabilityRepo "appointly/database/repository/availability"
	providerRepo "appointly/database/repository/provider"
	"appointly/models"
)

type Store struct {
	mu           sync.Mutex
	availability []models.Availability
	appointments []models.Appointment
	providers    []models.Provider
	watchers     []chan models.ChangeEvent
	fail         error
}

func New() *Store {
	return &Store{}
}

// SetError makes every call fail with err until it is reset with nil.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Store) Availability() availabilityRepo.AvailabilityRepository {
	return &availabilityStore{s: s}
}

func (s *Store) Appointments() appointmentRepo.AppointmentRepository {
	return &appointmentStore{s: s}
}

func (s *Store) Providers() providerRepo.ProviderRepository {
	return &providerStore{s: s}
}

// publish must be called with s.mu held.
func (s *Store) publish(ev models.ChangeEvent) {
	for _, w := range s.watchers {
		select {
		case w <- ev:
		default:
		}
	}
}

func (s *Store) watch(ctx context.Context) (<-chan models.ChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	ch := make(chan models.ChangeEvent, 16)
	s.watchers = append(s.watchers, ch)
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
