package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapacityAllows(t *testing.T) {
	assert.True(t, Unbounded().Allows(1_000_000))
	assert.True(t, Limited(2).Allows(1))
	assert.False(t, Limited(2).Allows(2))
	assert.False(t, Limited(0).Allows(0))
	assert.False(t, Capacity{}.Allows(0), "zero value is a zero cap")
	assert.Equal(t, 0, Limited(-3).Limit())
}

func TestCapacityString(t *testing.T) {
	assert.Equal(t, "unbounded", Unbounded().String())
	assert.Equal(t, "3", Limited(3).String())
}
