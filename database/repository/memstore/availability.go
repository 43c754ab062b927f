package memstore

import (
	"context"
	"time"

	availabilityRepo "appointly/database/repository/availability"
	"appointly/models"

	"github.com/google/uuid"
)

type availabilityStore struct {
	s *Store
}

func (r *availabilityStore) GetByScope(ctx context.Context, scope models.Scope, scopeID string) (*models.Availability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	for _, a := range r.s.availability {
		if a.Scope == scope && a.ScopeID == scopeID {
			cp := a
			return &cp, nil
		}
	}
	return nil, availabilityRepo.ErrNotFound
}

func (r *availabilityStore) ListAll(ctx context.Context) ([]models.Availability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	return append([]models.Availability(nil), r.s.availability...), nil
}

func (r *availabilityStore) ListByLocation(ctx context.Context, locationID string) ([]models.Availability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	var out []models.Availability
	for _, a := range r.s.availability {
		if (a.Scope == models.ScopeLocation && a.ScopeID == locationID) ||
			(a.Scope == models.ScopeProvider && a.LocationID == locationID) ||
			a.Scope == models.ScopeBusiness {
			out = append(out, a)
		}
	}
	return out, nil
}

// Save replaces in place so stored order stays insertion order.
func (r *availabilityStore) Save(ctx context.Context, a *models.Availability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}
	now := time.Now().UTC()
	a.UpdatedAt = now
	for i, existing := range r.s.availability {
		if existing.Scope == a.Scope && existing.ScopeID == a.ScopeID {
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			r.s.availability[i] = *a
			r.s.publish(changeFor(*a))
			return nil
		}
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = now
	r.s.availability = append(r.s.availability, *a)
	r.s.publish(changeFor(*a))
	return nil
}

func (r *availabilityStore) Watch(ctx context.Context) (<-chan models.ChangeEvent, error) {
	return r.s.watch(ctx)
}

func (r *availabilityStore) EnsureIndexes(ctx context.Context) error { return nil }

func changeFor(a models.Availability) models.ChangeEvent {
	ev := models.ChangeEvent{Collection: "availability", LocationID: a.LocationID}
	if a.Scope == models.ScopeLocation {
		ev.LocationID = a.ScopeID
	}
	return ev
}
