package reservation

import (
	"context"

	"github.com/google/uuid"

	"github.com/k-experience/service-reservation/internal/domain/inventory"
)

// Repository defines persistence operations for reservations. CreateConfirmed
// is the atomic core: it must commit the reservation, the inventory counter
// update, and the optional coupon consumption as a single unit or not at all.
type Repository interface {
	CreateConfirmed(ctx context.Context, r *Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	Update(ctx context.Context, r *Reservation) error
	ListByUser(ctx context.Context, userID string) ([]*Reservation, error)
	ListAll(ctx context.Context, page, limit int) ([]*Reservation, int64, error)
	GetStats(ctx context.Context) (int64, map[string]int64, error)

	// InventoryForDate returns the advisory (non-authoritative) counter for a
	// date, defaulting to an empty counter when no row exists.
	InventoryForDate(ctx context.Context, date string) (*inventory.Counter, error)
}
