package memstore

import (
	"context"
	"sort"
	"time"

	appointmentRepo "appointly/database/repository/appointment"
	"appointly/models"

	"github.com/google/uuid"
)

type appointmentStore struct {
	s *Store
}

func (r *appointmentStore) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	if i := r.indexOf(id); i >= 0 {
		cp := r.s.appointments[i]
		return &cp, nil
	}
	return nil, appointmentRepo.ErrNotFound
}

func (r *appointmentStore) ListByServiceProvider(ctx context.Context, providerID string) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool { return a.HasProvider(providerID) })
}

func (r *appointmentStore) ListByLocation(ctx context.Context, locationID string) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool { return a.ServiceLocationID == locationID })
}

func (r *appointmentStore) ListByClient(ctx context.Context, clientID string) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool { return a.HasClient(clientID) })
}

func (r *appointmentStore) ListByProvidersInRange(ctx context.Context, providerIDs []string, from, to time.Time) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool {
		return !a.IsCancelled() && a.Overlaps(from, to) && anyProvider(a, providerIDs)
	})
}

func (r *appointmentStore) Save(ctx context.Context, appt *models.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}
	r.upsert(appt)
	return nil
}

// InsertTransactionally holds the store lock across the check and the
// insert, which is the in-memory equivalent of the Mongo transaction.
func (r *appointmentStore) InsertTransactionally(ctx context.Context, appt *models.Appointment, check appointmentRepo.CapacityCheck) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}
	var existing []models.Appointment
	for _, a := range r.s.appointments {
		if !a.IsCancelled() && a.Overlaps(appt.StartTime, appt.EndTime) && anyProvider(&a, appt.ServiceProviderIDs) {
			existing = append(existing, a)
		}
	}
	if check != nil {
		if err := check(existing); err != nil {
			return err
		}
	}
	r.upsert(appt)
	return nil
}

func (r *appointmentStore) MarkCancelled(ctx context.Context, id string, c models.Cancellation) (*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	i := r.indexOf(id)
	if i < 0 {
		return nil, appointmentRepo.ErrNotFound
	}
	a := &r.s.appointments[i]
	if a.IsCancelled() {
		return nil, appointmentRepo.ErrAlreadyCancelled
	}
	a.Status = models.StatusCancelled
	a.Cancellation = &c
	a.UpdatedAt = time.Now().UTC()
	r.s.publish(models.ChangeEvent{Collection: "appointments", LocationID: a.ServiceLocationID})
	cp := *a
	return &cp, nil
}

func (r *appointmentStore) SetRefund(ctx context.Context, id string, refund models.RefundRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}
	i := r.indexOf(id)
	if i < 0 {
		return appointmentRepo.ErrNotFound
	}
	r.s.appointments[i].Refund = &refund
	return nil
}

func (r *appointmentStore) Watch(ctx context.Context) (<-chan models.ChangeEvent, error) {
	return r.s.watch(ctx)
}

func (r *appointmentStore) EnsureIndexes(ctx context.Context) error { return nil }

// upsert must be called with the store lock held.
func (r *appointmentStore) upsert(appt *models.Appointment) {
	now := time.Now().UTC()
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	appt.SyncDuration()
	if i := r.indexOf(appt.ID); i >= 0 {
		r.s.appointments[i] = *appt
	} else {
		r.s.appointments = append(r.s.appointments, *appt)
	}
	r.s.publish(models.ChangeEvent{Collection: "appointments", LocationID: appt.ServiceLocationID})
}

func (r *appointmentStore) indexOf(id string) int {
	for i := range r.s.appointments {
		if r.s.appointments[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *appointmentStore) filter(keep func(a *models.Appointment) bool) ([]models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	var out []models.Appointment
	for i := range r.s.appointments {
		if keep(&r.s.appointments[i]) {
			out = append(out, r.s.appointments[i])
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].StartTime.Before(out[b].StartTime) })
	return out, nil
}

func anyProvider(a *models.Appointment, ids []string) bool {
	for _, id := range ids {
		if a.HasProvider(id) {
			return true
		}
	}
	return false
}
