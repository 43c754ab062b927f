package availability

import (
	"time"

	"appointly/models"
)

// Input is everything the engine needs to answer availability questions for
// one location. All engine functions are pure over an Input.
type Input struct {
	// Records are provider-scoped schedules in stored order.
	Records []models.Availability
	// Closures are blocked ranges inherited from location and business records.
	Closures  []models.BlockedRange
	Providers map[string]models.Provider
	Index     AppointmentIndex
	Selection models.ProviderSelection
	Location  *time.Location
	// Today is the local calendar date; dates before it are never offered.
	Today string
	// Now, when set, hides slots on Today that have already started.
	Now time.Time
}

func (in Input) location() *time.Location {
	if in.Location == nil {
		return time.UTC
	}
	return in.Location
}

// SplitRecords separates provider schedules from the closures that location
// and business records impose on them.
func SplitRecords(records []models.Availability) ([]models.Availability, []models.BlockedRange) {
	var providers []models.Availability
	var closures []models.BlockedRange
	for _, r := range records {
		switch r.Scope {
		case models.ScopeProvider:
			providers = append(providers, r)
		case models.ScopeLocation, models.ScopeBusiness:
			closures = append(closures, r.Blocked...)
		}
	}
	return providers, closures
}

// Roster indexes providers by id.
func Roster(providers []models.Provider) map[string]models.Provider {
	m := make(map[string]models.Provider, len(providers))
	for _, p := range providers {
		m[p.ID] = p
	}
	return m
}

// Horizon lists days consecutive local dates starting at from.
func Horizon(from time.Time, days int, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	local := from.In(loc)
	first := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dates := make([]string, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, first.AddDate(0, 0, i).Format(models.DateLayout))
	}
	return dates
}
