package availability

import (
	"time"

	"appointly/models"
)

// AppointmentIndex groups live appointments by the local dates they touch.
type AppointmentIndex map[string][]models.Appointment

// NewAppointmentIndex drops cancelled appointments and files the rest under
// every local date between their start and end.
func NewAppointmentIndex(appts []models.Appointment, loc *time.Location) AppointmentIndex {
	if loc == nil {
		loc = time.UTC
	}
	idx := make(AppointmentIndex)
	for _, a := range appts {
		if a.IsCancelled() || !a.StartTime.Before(a.EndTime) {
			continue
		}
		start := a.StartTime.In(loc)
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		for day.Before(a.EndTime) {
			key := day.Format(models.DateLayout)
			idx[key] = append(idx[key], a)
			day = day.AddDate(0, 0, 1)
		}
	}
	return idx
}

// ForDate returns the appointments that touch date.
func (idx AppointmentIndex) ForDate(date string) []models.Appointment {
	if idx == nil {
		return nil
	}
	return idx[date]
}
