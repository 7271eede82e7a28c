package groupbuy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for group-buy campaigns.
type Repository interface {
	Save(ctx context.Context, c *Campaign) error
	FindByID(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// AddParticipant atomically appends the participant and increments the
	// count. Concurrent joins must both land (lost updates on the count are
	// not acceptable here, there is just no upper bound enforced).
	AddParticipant(ctx context.Context, campaignID uuid.UUID, p Participant) (*Campaign, error)

	ListActive(ctx context.Context) ([]*Campaign, error)

	// CompleteExpired transitions every active campaign whose visit date is
	// before today to completed, best-effort in one batch. Returns the number
	// of campaigns transitioned.
	CompleteExpired(ctx context.Context, today time.Time) (int64, error)
}
