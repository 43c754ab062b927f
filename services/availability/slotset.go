package availability

import (
	"sort"
	"time"

	"appointly/models"
)

// SlotCombo is one slot offered by one provider with that provider's capacity.
type SlotCombo struct {
	Slot       models.DailySlot
	ProviderID string
	Capacity   models.Capacity
	record     int
	startMin   int
	endMin     int
}

// ResolveCapacity picks the record's MaxConcurrent, then the provider's
// MaxSimultaneousClients, and otherwise leaves the slot unbounded.
func ResolveCapacity(record models.Availability, provider *models.Provider) models.Capacity {
	if record.MaxConcurrent != nil {
		return models.Limited(*record.MaxConcurrent)
	}
	if provider != nil && provider.MaxSimultaneousClients != nil {
		return models.Limited(*provider.MaxSimultaneousClients)
	}
	return models.Unbounded()
}

// BuildSlotCombos expands the weekly schedules for weekday into raw combos.
// Nothing is merged or deduplicated; the result is ordered by start time and
// keeps record order among equal starts.
func BuildSlotCombos(weekday time.Weekday, records []models.Availability, roster map[string]models.Provider) []SlotCombo {
	var combos []SlotCombo
	for i := range records {
		rec := records[i]
		entry, ok := rec.EntryFor(weekday)
		if !ok {
			continue
		}
		var prov *models.Provider
		if p, found := roster[rec.ScopeID]; found {
			prov = &p
		}
		capacity := ResolveCapacity(rec, prov)
		for _, slot := range entry.Slots {
			start, end, err := slot.Minutes()
			if err != nil || start >= end {
				continue
			}
			combos = append(combos, SlotCombo{
				Slot:       slot,
				ProviderID: rec.ScopeID,
				Capacity:   capacity,
				record:     i,
				startMin:   start,
				endMin:     end,
			})
		}
	}
	sort.SliceStable(combos, func(a, b int) bool {
		return combos[a].startMin < combos[b].startMin
	})
	return combos
}

// BuildSlotCombosForDate is BuildSlotCombos for the weekday of date, minus
// every combo that intersects the record's own blocked ranges or a closure.
func BuildSlotCombosForDate(date string, in Input) ([]SlotCombo, error) {
	loc := in.location()
	day, err := models.ParseDate(date, loc)
	if err != nil {
		return nil, err
	}

	raw := BuildSlotCombos(day.Weekday(), in.Records, in.Providers)
	combos := raw[:0]
	for _, c := range raw {
		start, end, err := c.Slot.On(date, loc)
		if err != nil {
			continue
		}
		if in.Records[c.record].IsBlocked(start, end, loc) {
			continue
		}
		if closed(in.Closures, start, end, loc) {
			continue
		}
		combos = append(combos, c)
	}
	return combos, nil
}

func closed(closures []models.BlockedRange, start, end time.Time, loc *time.Location) bool {
	for _, b := range closures {
		if b.Blocks(start, end, loc) {
			return true
		}
	}
	return false
}
