package models

import (
	"fmt"
	"time"
)

// DailySlot is a bookable window on a single day, expressed in local wall-clock time.
type DailySlot struct {
	Start string `bson:"start" json:"start"` // "HH:mm", 24h, zero-padded
	End   string `bson:"end" json:"end"`     // "HH:mm", strictly after Start
}

// Key identifies a slot by its start and end.
func (s DailySlot) Key() string {
	return s.Start + "-" + s.End
}

// Minutes returns start and end as minutes from midnight.
func (s DailySlot) Minutes() (int, int, error) {
	start, err := ParseClock(s.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(s.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Validate checks the slot format and that it has a positive length.
func (s DailySlot) Validate() error {
	start, end, err := s.Minutes()
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("slot %s must start before it ends", s.Key())
	}
	return nil
}

// On anchors the slot to a calendar date ("YYYY-MM-DD") in loc.
func (s DailySlot) On(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end, err := s.Minutes()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return atMinute(day, start), atMinute(day, end), nil
}

// ParseClock parses "HH:mm" into minutes from midnight.
func ParseClock(v string) (int, error) {
	if len(v) != 5 || v[2] != ':' {
		return 0, fmt.Errorf("invalid time %q, expected HH:mm", v)
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", v, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDate parses "YYYY-MM-DD" as local midnight in loc.
func ParseDate(v string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", v, err)
	}
	return d, nil
}

// DateLayout is the calendar date format used across the API.
const DateLayout = "2006-01-02"

// atMinute builds a wall-clock time on day; DST gaps resolve the way time.Date does.
func atMinute(day time.Time, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, day.Location())
}
