package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	appointmentRepo "appointly/database/repository/appointment"
	availabilityRepo "appointly/database/repository/availability"
	providerRepo "appointly/database/repository/provider"
	"appointly/models"

	"go.uber.org/zap"
)

// DefaultAvailabilityService loads stored data and runs the engine over it.
type DefaultAvailabilityService struct {
	Availability availabilityRepo.AvailabilityRepository
	Appointments appointmentRepo.AppointmentRepository
	Providers    providerRepo.ProviderRepository
	Location     *time.Location
	HorizonDays  int
	Logger       *zap.Logger
	Clock        func() time.Time
}

func (s *DefaultAvailabilityService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *DefaultAvailabilityService) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *DefaultAvailabilityService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// GetView computes dates first, then the slots of q.Date when it is still offered.
func (s *DefaultAvailabilityService) GetView(ctx context.Context, q ViewQuery) (*models.AvailabilityView, error) {
	if strings.TrimSpace(q.LocationID) == "" {
		return nil, validationError("locationId is required")
	}
	if q.Selection.IsZero() {
		return nil, validationError("provider selection is required")
	}
	if q.Date != "" {
		if _, err := models.ParseDate(q.Date, s.loc()); err != nil {
			return nil, validationError(err.Error())
		}
	}

	now := s.now()
	horizon := Horizon(now, s.horizonDays(), s.loc())
	from, _ := models.ParseDate(horizon[0], s.loc())
	to := from.AddDate(0, 0, len(horizon))

	in, err := s.LoadInput(ctx, q.LocationID, q.Selection, from, to)
	if err != nil {
		return nil, err
	}

	view := &models.AvailabilityView{
		LocationID: q.LocationID,
		Selection:  q.Selection,
		Dates:      AvailableDates(horizon, *in),
		Slots:      []models.DailySlot{},
		ComputedAt: now.UTC(),
	}
	date, _ := ReconcileSelection(q.Date, nil, view.Dates, nil)
	if date != "" {
		slots, err := BuildSlotList(date, *in)
		if err != nil {
			return nil, validationError(err.Error())
		}
		view.Date = date
		view.Slots = slots
	}

	s.logger().Debug("availability computed",
		zap.String("locationId", q.LocationID),
		zap.String("provider", q.Selection.String()),
		zap.Int("dates", len(view.Dates)),
		zap.Int("slots", len(view.Slots)),
	)
	return view, nil
}

func (s *DefaultAvailabilityService) horizonDays() int {
	if s.HorizonDays <= 0 {
		return 30
	}
	return s.HorizonDays
}

func (s *DefaultAvailabilityService) LoadInput(ctx context.Context, locationID string, sel models.ProviderSelection, from, to time.Time) (*Input, error) {
	records, err := s.Availability.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, externalError("failed to load availability", err)
	}
	roster, err := s.Providers.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, externalError("failed to load providers", err)
	}

	providerRecords, closures := SplitRecords(records)
	ids := make([]string, 0, len(providerRecords))
	for _, r := range providerRecords {
		ids = append(ids, r.ScopeID)
	}
	appts, err := s.Appointments.ListByProvidersInRange(ctx, ids, from, to)
	if err != nil {
		return nil, externalError("failed to load appointments", err)
	}

	now := s.now()
	return &Input{
		Records:   providerRecords,
		Closures:  closures,
		Providers: Roster(roster),
		Index:     NewAppointmentIndex(appts, s.loc()),
		Selection: sel,
		Location:  s.loc(),
		Today:     todayIn(now, s.loc()),
		Now:       now,
	}, nil
}

func (s *DefaultAvailabilityService) GetAvailability(ctx context.Context, scope models.Scope, scopeID string) (*models.Availability, error) {
	if !scope.Valid() {
		return nil, validationError("unknown scope " + string(scope))
	}
	a, err := s.Availability.GetByScope(ctx, scope, scopeID)
	if errors.Is(err, availabilityRepo.ErrNotFound) {
		return nil, &AvailabilityError{Code: CodeNotFound, Message: "no availability for " + string(scope) + " " + scopeID, Err: err}
	}
	if err != nil {
		return nil, externalError("failed to load availability", err)
	}
	return a, nil
}

func (s *DefaultAvailabilityService) SaveAvailability(ctx context.Context, a *models.Availability) error {
	if err := a.Validate(); err != nil {
		return validationError(err.Error())
	}
	if a.Scope == models.ScopeProvider && a.LocationID == "" {
		return validationError("provider availability needs a locationId")
	}
	if err := s.Availability.Save(ctx, a); err != nil {
		return externalError("failed to save availability", err)
	}
	s.logger().Info("availability saved", zap.String("scope", string(a.Scope)), zap.String("scopeId", a.ScopeID))
	return nil
}
