package availability

import (
	"sort"

	"appointly/models"
)

// BuildSlotList returns the bookable slots on date for in.Selection,
// deduplicated by start and end and ordered by start time.
//
// For a specific provider a slot is kept when that provider has room. For any
// provider a slot is kept when some provider offering a slot with the same
// start has room for it.
func BuildSlotList(date string, in Input) ([]models.DailySlot, error) {
	combos, err := BuildSlotCombosForDate(date, in)
	if err != nil {
		return nil, err
	}
	if !in.Selection.IsAny() {
		kept := combos[:0]
		for _, c := range combos {
			if c.ProviderID == in.Selection.ProviderID() {
				kept = append(kept, c)
			}
		}
		combos = kept
	}

	unique := dedupe(combos)
	loc := in.location()
	appts := in.Index.ForDate(date)

	slots := make([]models.DailySlot, 0, len(unique))
	for _, u := range unique {
		start, end, err := u.Slot.On(date, loc)
		if err != nil || in.started(date, start) {
			continue
		}
		for _, c := range combos {
			if c.startMin != u.startMin {
				continue
			}
			if in.Selection.IsAny() || c.endMin == u.endMin {
				if HasCapacityAt(c.ProviderID, start, end, c.Capacity, appts) {
					slots = append(slots, u.Slot)
					break
				}
			}
		}
	}
	return slots, nil
}

func dedupe(combos []SlotCombo) []SlotCombo {
	seen := make(map[string]bool, len(combos))
	var out []SlotCombo
	for _, c := range combos {
		key := c.Slot.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].startMin != out[b].startMin {
			return out[a].startMin < out[b].startMin
		}
		return out[a].endMin < out[b].endMin
	})
	return out
}

// ReconcileSelection clears a chosen date that is no longer offered, and a
// chosen slot that is no longer in the fresh slot list.
func ReconcileSelection(date string, slot *models.DailySlot, dates []string, slots []models.DailySlot) (string, *models.DailySlot) {
	if date != "" && !containsDate(dates, date) {
		return "", nil
	}
	if slot != nil && !containsSlot(slots, *slot) {
		return date, nil
	}
	return date, slot
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}

func containsSlot(slots []models.DailySlot, slot models.DailySlot) bool {
	for _, s := range slots {
		if s.Key() == slot.Key() {
			return true
		}
	}
	return false
}
