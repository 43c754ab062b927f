package models

import "strconv"

// Capacity is the number of concurrent appointments a provider may hold in a slot.
// The zero value is Limited(0).
type Capacity struct {
	limit     int
	unbounded bool
}

// Unbounded is a capacity that never runs out.
func Unbounded() Capacity {
	return Capacity{unbounded: true}
}

// Limited caps concurrency at n. Negative values are treated as zero.
func Limited(n int) Capacity {
	if n < 0 {
		n = 0
	}
	return Capacity{limit: n}
}

func (c Capacity) IsUnbounded() bool { return c.unbounded }

// Limit returns the cap; it is meaningless when IsUnbounded.
func (c Capacity) Limit() int { return c.limit }

// Allows reports whether one more appointment fits given count existing ones.
func (c Capacity) Allows(count int) bool {
	return c.unbounded || count < c.limit
}

func (c Capacity) String() string {
	if c.unbounded {
		return "unbounded"
	}
	return strconv.Itoa(c.limit)
}
