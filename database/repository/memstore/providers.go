package memstore

import (
	"context"
	"time"

	providerRepo "appointly/database/repository/provider"
	"appointly/models"

	"github.com/google/uuid"
)

type providerStore struct {
	s *Store
}

func (r *providerStore) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	for _, p := range r.s.providers {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, providerRepo.ErrNotFound
}

func (r *providerStore) ListByLocation(ctx context.Context, locationID string) ([]models.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	var out []models.Provider
	for _, p := range r.s.providers {
		if p.LocationID == locationID && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *providerStore) Save(ctx context.Context, p *models.Provider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	for i := range r.s.providers {
		if r.s.providers[i].ID == p.ID {
			r.s.providers[i] = *p
			return nil
		}
	}
	r.s.providers = append(r.s.providers, *p)
	return nil
}

func (r *providerStore) EnsureIndexes(ctx context.Context) error { return nil }
