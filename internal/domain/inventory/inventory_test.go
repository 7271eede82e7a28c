package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/k-experience/service-reservation/internal/domain/inventory"
)

func TestNewCounter(t *testing.T) {
	c := inventory.NewCounter("2026-10-01")

	assert.Equal(t, "2026-10-01", c.Date)
	assert.Equal(t, 0, c.CurrentCount)
	assert.Equal(t, inventory.DefaultMaxCapacity, c.MaxCapacity)
	assert.Equal(t, inventory.DefaultMaxCapacity, c.Available())
}

func TestCanAccommodate(t *testing.T) {
	c := inventory.Counter{Date: "2026-10-01", CurrentCount: 48, MaxCapacity: 50}

	assert.Equal(t, 2, c.Available())
	assert.True(t, c.CanAccommodate(2))
	assert.False(t, c.CanAccommodate(3))
}

func TestCanAccommodate_Full(t *testing.T) {
	c := inventory.Counter{Date: "2026-10-01", CurrentCount: 50, MaxCapacity: 50}

	assert.Equal(t, 0, c.Available())
	assert.False(t, c.CanAccommodate(1))
}
