package availability

import (
	"time"

	"appointly/models"
)

// AvailableDates keeps the horizon dates on which at least one slot could be
// booked for in.Selection. Dates before in.Today are skipped; order is kept.
func AvailableDates(horizon []string, in Input) []string {
	dates := make([]string, 0, len(horizon))
	for _, date := range horizon {
		if in.Today != "" && date < in.Today {
			continue
		}
		if dateHasRoom(date, in) {
			dates = append(dates, date)
		}
	}
	return dates
}

func dateHasRoom(date string, in Input) bool {
	combos, err := BuildSlotCombosForDate(date, in)
	if err != nil {
		return false
	}
	loc := in.location()
	appts := in.Index.ForDate(date)
	for _, c := range combos {
		if !in.Selection.IsAny() && c.ProviderID != in.Selection.ProviderID() {
			continue
		}
		start, end, err := c.Slot.On(date, loc)
		if err != nil || in.started(date, start) {
			continue
		}
		if HasCapacityAt(c.ProviderID, start, end, c.Capacity, appts) {
			return true
		}
	}
	return false
}

// started reports whether a slot beginning at start on date is already in the past.
func (in Input) started(date string, start time.Time) bool {
	if in.Now.IsZero() || date != in.Today {
		return false
	}
	return !start.After(in.Now)
}

// todayIn returns the local calendar date of now.
func todayIn(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(models.DateLayout)
}
