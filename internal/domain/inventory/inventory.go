// Package inventory models the per-date capacity counter. One counter exists
// per calendar day; it is created lazily on the first reservation for that
// day and only ever mutated inside the reservation commit transaction.
package inventory

// DefaultMaxCapacity is the capacity assigned to a date with no counter yet.
const DefaultMaxCapacity = 50

// Counter is the committed headcount for one calendar date.
type Counter struct {
	Date         string
	CurrentCount int
	MaxCapacity  int
}

// NewCounter returns an empty counter for a date with the default capacity.
func NewCounter(date string) *Counter {
	return &Counter{Date: date, CurrentCount: 0, MaxCapacity: DefaultMaxCapacity}
}

// Available returns the remaining headcount for the date.
func (c *Counter) Available() int {
	return c.MaxCapacity - c.CurrentCount
}

// CanAccommodate reports whether the requested headcount fits.
func (c *Counter) CanAccommodate(requested int) bool {
	return c.CurrentCount+requested <= c.MaxCapacity
}
