package models

import (
	"fmt"
	"strings"
	"time"
)

// BlockedRange removes availability between two bounds. A bound is either a
// date ("2006-01-02", the whole day, inclusive) or a date-time
// ("2006-01-02T15:04" or RFC3339). An empty End repeats Start.
type BlockedRange struct {
	Start  string `bson:"start" json:"start"`
	End    string `bson:"end,omitempty" json:"end,omitempty"`
	Reason string `bson:"reason,omitempty" json:"reason,omitempty"` // e.g. "holiday", "training"
}

const localDateTimeLayout = "2006-01-02T15:04"

// Interval resolves the range to an absolute [start, end) window in loc.
func (b BlockedRange) Interval(loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	endRaw := b.End
	if strings.TrimSpace(endRaw) == "" {
		endRaw = b.Start
	}

	start, _, err := parseBound(b.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, endIsDate, err := parseBound(endRaw, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endIsDate {
		end = end.AddDate(0, 0, 1)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("blocked range %s..%s ends before it starts", b.Start, endRaw)
	}
	return start, end, nil
}

// Blocks reports whether [from, to) intersects the range. A zero-length
// range blocks any window that contains its instant.
func (b BlockedRange) Blocks(from, to time.Time, loc *time.Location) bool {
	start, end, err := b.Interval(loc)
	if err != nil {
		return false
	}
	if start.Equal(end) {
		return !start.Before(from) && start.Before(to)
	}
	return from.Before(end) && to.After(start)
}

// Validate checks both bounds parse and are ordered.
func (b BlockedRange) Validate() error {
	_, _, err := b.Interval(time.UTC)
	return err
}

func parseBound(v string, loc *time.Location) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if len(v) == len(DateLayout) {
		t, err := time.ParseInLocation(DateLayout, v, loc)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid blocked date %q: %w", v, err)
		}
		return t, true, nil
	}
	if t, err := time.ParseInLocation(localDateTimeLayout, v, loc); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid blocked bound %q", v)
	}
	return t, false, nil
}
