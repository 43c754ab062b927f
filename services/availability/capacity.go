package availability

import (
	"time"

	"appointly/models"
)

// CountOverlapping counts live appointments of providerID that intersect
// [start, end). Touching endpoints do not count.
func CountOverlapping(providerID string, start, end time.Time, appts []models.Appointment) int {
	n := 0
	for i := range appts {
		a := &appts[i]
		if a.IsCancelled() || !a.HasProvider(providerID) {
			continue
		}
		if a.Overlaps(start, end) {
			n++
		}
	}
	return n
}

// HasCapacityAt reports whether providerID can take one more appointment in [start, end).
func HasCapacityAt(providerID string, start, end time.Time, capacity models.Capacity, appts []models.Appointment) bool {
	if capacity.IsUnbounded() {
		return true
	}
	return capacity.Allows(CountOverlapping(providerID, start, end, appts))
}

// HasCapacity anchors slot on date and checks it against appts.
func HasCapacity(providerID string, slot models.DailySlot, date string, capacity models.Capacity, appts []models.Appointment, loc *time.Location) bool {
	start, end, err := slot.On(date, loc)
	if err != nil {
		return false
	}
	return HasCapacityAt(providerID, start, end, capacity, appts)
}
