package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Scope says which entity an Availability record describes.
type Scope string

const (
	ScopeBusiness Scope = "business"
	ScopeLocation Scope = "location"
	ScopeProvider Scope = "provider"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeBusiness, ScopeLocation, ScopeProvider:
		return true
	}
	return false
}

// WeeklyEntry lists the slots for one weekday. No slots means closed.
type WeeklyEntry struct {
	Weekday int         `bson:"weekday" json:"weekday"` // 0 = Sunday ... 6 = Saturday
	Slots   []DailySlot `bson:"slots" json:"slots"`
}

// Availability is the recurring weekly schedule of a business, location or provider.
type Availability struct {
	ID            string         `bson:"id" json:"id"`
	Scope         Scope          `bson:"scope" json:"scope"`
	ScopeID       string         `bson:"scopeId" json:"scopeId"`
	LocationID    string         `bson:"locationId,omitempty" json:"locationId,omitempty"` // owning location for provider records
	Weekly        []WeeklyEntry  `bson:"weekly" json:"weekly"`
	Blocked       []BlockedRange `bson:"blocked,omitempty" json:"blocked,omitempty"`
	MaxConcurrent *int           `bson:"maxConcurrent,omitempty" json:"maxConcurrent,omitempty"`
	MaxPerDay     *int           `bson:"maxPerDay,omitempty" json:"maxPerDay,omitempty"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// EntryFor returns the weekly entry for weekday, if any.
func (a *Availability) EntryFor(weekday time.Weekday) (WeeklyEntry, bool) {
	for _, e := range a.Weekly {
		if e.Weekday == int(weekday) {
			return e, true
		}
	}
	return WeeklyEntry{}, false
}

// IsBlocked reports whether [from, to) intersects one of the record's blocked ranges.
func (a *Availability) IsBlocked(from, to time.Time, loc *time.Location) bool {
	for _, b := range a.Blocked {
		if b.Blocks(from, to, loc) {
			return true
		}
	}
	return false
}

// Validate rejects records the slot engine cannot interpret.
func (a *Availability) Validate() error {
	if !a.Scope.Valid() {
		return fmt.Errorf("invalid scope %q", a.Scope)
	}
	if strings.TrimSpace(a.ScopeID) == "" {
		return errors.New("scopeId is required")
	}
	seen := make(map[int]bool, len(a.Weekly))
	for _, e := range a.Weekly {
		if e.Weekday < 0 || e.Weekday > 6 {
			return fmt.Errorf("weekday %d out of range 0-6", e.Weekday)
		}
		if seen[e.Weekday] {
			return fmt.Errorf("weekday %d listed more than once", e.Weekday)
		}
		seen[e.Weekday] = true
		for _, s := range e.Slots {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("weekday %d: %w", e.Weekday, err)
			}
		}
	}
	for _, b := range a.Blocked {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	if a.MaxConcurrent != nil && *a.MaxConcurrent < 0 {
		return errors.New("maxConcurrent must not be negative")
	}
	if a.MaxPerDay != nil && *a.MaxPerDay < 0 {
		return errors.New("maxPerDay must not be negative")
	}
	return nil
}

// IntPtr is a small helper for optional caps.
func IntPtr(v int) *int {
	return &v
}
