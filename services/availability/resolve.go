package availability

import (
	"errors"
	"time"

	"appointly/models"
)

var (
	// ErrNoProviderAvailable means no provider offers the slot with room to spare.
	ErrNoProviderAvailable = errors.New("no provider available for the selected slot")
	// ErrSlotNotOffered means the selected provider does not offer the slot on that date.
	ErrSlotNotOffered = errors.New("selected provider does not offer this slot")
)

// ResolveProvider turns a selection into a concrete provider for slot on date.
//
// For any provider, records are scanned in stored order and the first provider
// whose schedule has a slot with the same start and end, that is not blocked
// and still has room, wins. No further tie-break is applied.
func ResolveProvider(date string, slot models.DailySlot, in Input) (string, error) {
	loc := in.location()
	day, err := models.ParseDate(date, loc)
	if err != nil {
		return "", err
	}
	start, end, err := slot.On(date, loc)
	if err != nil {
		return "", err
	}
	if closed(in.Closures, start, end, loc) {
		if in.Selection.IsAny() {
			return "", ErrNoProviderAvailable
		}
		return "", ErrSlotNotOffered
	}

	appts := in.Index.ForDate(date)
	for i := range in.Records {
		rec := in.Records[i]
		if rec.Scope != models.ScopeProvider {
			continue
		}
		if !in.Selection.IsAny() && rec.ScopeID != in.Selection.ProviderID() {
			continue
		}
		if !offers(rec, day.Weekday(), slot) || rec.IsBlocked(start, end, loc) {
			continue
		}
		var prov *models.Provider
		if p, ok := in.Providers[rec.ScopeID]; ok {
			prov = &p
		}
		if HasCapacityAt(rec.ScopeID, start, end, ResolveCapacity(rec, prov), appts) {
			return rec.ScopeID, nil
		}
	}
	if in.Selection.IsAny() {
		return "", ErrNoProviderAvailable
	}
	return "", ErrSlotNotOffered
}

func offers(rec models.Availability, weekday time.Weekday, slot models.DailySlot) bool {
	entry, ok := rec.EntryFor(weekday)
	if !ok {
		return false
	}
	for _, s := range entry.Slots {
		if s.Start == slot.Start && s.End == slot.End {
			return true
		}
	}
	return false
}
