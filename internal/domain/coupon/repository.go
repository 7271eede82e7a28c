package coupon

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for coupons. Usage consumption
// does NOT happen here; it happens inside the reservation commit transaction
// so a limited coupon can never be oversold under concurrent redemptions.
type Repository interface {
	Save(ctx context.Context, c *Coupon) error
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	ListActive(ctx context.Context) ([]*Coupon, error)
}
