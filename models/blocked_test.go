package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, v string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02T15:04", v, time.UTC)
	require.NoError(t, err)
	return ts
}

func TestBlockedRangeWholeDays(t *testing.T) {
	b := BlockedRange{Start: "2024-07-01", End: "2024-07-02"}

	assert.True(t, b.Blocks(at(t, "2024-07-01T09:00"), at(t, "2024-07-01T10:00"), time.UTC))
	assert.True(t, b.Blocks(at(t, "2024-07-02T23:00"), at(t, "2024-07-02T23:30"), time.UTC), "end date is inclusive")
	assert.False(t, b.Blocks(at(t, "2024-07-03T00:00"), at(t, "2024-07-03T01:00"), time.UTC))
	assert.False(t, b.Blocks(at(t, "2024-06-30T23:00"), at(t, "2024-07-01T00:00"), time.UTC), "touching start does not overlap")
}

func TestBlockedRangeSingleDate(t *testing.T) {
	b := BlockedRange{Start: "2024-07-04", Reason: "holiday"}
	assert.True(t, b.Blocks(at(t, "2024-07-04T12:00"), at(t, "2024-07-04T13:00"), time.UTC))
	assert.False(t, b.Blocks(at(t, "2024-07-05T12:00"), at(t, "2024-07-05T13:00"), time.UTC))
}

func TestBlockedRangeDateTimes(t *testing.T) {
	b := BlockedRange{Start: "2024-07-01T09:30", End: "2024-07-01T11:00"}
	assert.True(t, b.Blocks(at(t, "2024-07-01T09:00"), at(t, "2024-07-01T10:00"), time.UTC))
	assert.False(t, b.Blocks(at(t, "2024-07-01T11:00"), at(t, "2024-07-01T12:00"), time.UTC))

	instant := BlockedRange{Start: "2024-07-01T10:00"}
	assert.True(t, instant.Blocks(at(t, "2024-07-01T10:00"), at(t, "2024-07-01T11:00"), time.UTC))
	assert.False(t, instant.Blocks(at(t, "2024-07-01T09:00"), at(t, "2024-07-01T10:00"), time.UTC))
}

func TestBlockedRangeValidate(t *testing.T) {
	assert.NoError(t, BlockedRange{Start: "2024-07-01T09:00:00Z", End: "2024-07-01T10:00:00Z"}.Validate())
	assert.Error(t, BlockedRange{Start: "2024-07-03", End: "2024-07-01"}.Validate())
	assert.Error(t, BlockedRange{Start: "July 1st"}.Validate())
}
