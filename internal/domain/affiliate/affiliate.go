package affiliate

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/k-experience/service-reservation/internal/platform/domain"
)

// Partner is a referral partner. Its counters are mutated best-effort:
// lost updates are tolerated in exchange for never blocking a booking.
type Partner struct {
	id             uuid.UUID
	code           string
	name           string
	clicks         int64
	sales          int64
	totalRevenue   int64
	commissionRate float64
	createdAt      time.Time
	updatedAt      time.Time
}

// New creates a partner with a referral code.
func New(code, name string, commissionRate float64) (*Partner, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.NewValidationError("referral code is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("partner name is required")
	}
	if commissionRate < 0 || commissionRate > 1 {
		return nil, domain.NewValidationError("commission rate must be between 0 and 1")
	}

	now := time.Now().UTC()
	return &Partner{
		id:             uuid.New(),
		code:           code,
		name:           name,
		commissionRate: commissionRate,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Partner from persistence.
func Reconstruct(id uuid.UUID, code, name string, clicks, sales, totalRevenue int64, commissionRate float64, createdAt, updatedAt time.Time) *Partner {
	return &Partner{
		id: id, code: code, name: name, clicks: clicks, sales: sales,
		totalRevenue: totalRevenue, commissionRate: commissionRate,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Commission returns the partner's commission on the attributed revenue.
func (p *Partner) Commission() int64 {
	return int64(float64(p.totalRevenue) * p.commissionRate)
}

// Getters.
func (p *Partner) ID() uuid.UUID           { return p.id }
func (p *Partner) Code() string            { return p.code }
func (p *Partner) Name() string            { return p.name }
func (p *Partner) Clicks() int64           { return p.clicks }
func (p *Partner) Sales() int64            { return p.sales }
func (p *Partner) TotalRevenue() int64     { return p.totalRevenue }
func (p *Partner) CommissionRate() float64 { return p.commissionRate }
func (p *Partner) CreatedAt() time.Time    { return p.createdAt }
func (p *Partner) UpdatedAt() time.Time    { return p.updatedAt }

// Repository defines persistence operations for affiliate partners. The
// increment operations are plain non-transactional updates by design.
type Repository interface {
	Save(ctx context.Context, p *Partner) error
	FindByCode(ctx context.Context, code string) (*Partner, error)
	IncrementClicks(ctx context.Context, code string) error
	RecordSale(ctx context.Context, code string, revenue int64) error
}
