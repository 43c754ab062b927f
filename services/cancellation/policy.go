package cancellation

import (
	"time"

	"appointly/models"
)

// FeePolicy turns the caller's base fee into the fee actually charged.
type FeePolicy interface {
	Fee(appt *models.Appointment, baseFeeCents int64, now time.Time) int64
}

// NoticePolicy charges the base fee unless the appointment starts at least
// NoticeHours from now. A zero NoticeHours never waives.
type NoticePolicy struct {
	NoticeHours int
}

func (p NoticePolicy) Fee(appt *models.Appointment, baseFeeCents int64, now time.Time) int64 {
	if baseFeeCents <= 0 {
		return 0
	}
	if p.NoticeHours > 0 && !appt.StartTime.Before(now.Add(time.Duration(p.NoticeHours)*time.Hour)) {
		return 0
	}
	return baseFeeCents
}

// FlatPolicy always charges the base fee.
type FlatPolicy struct{}

func (FlatPolicy) Fee(_ *models.Appointment, baseFeeCents int64, _ time.Time) int64 {
	if baseFeeCents < 0 {
		return 0
	}
	return baseFeeCents
}
