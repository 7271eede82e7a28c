package coupon

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/k-experience/service-reservation/internal/platform/domain"
)

// DiscountType is how a coupon reduces the total.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Validation failures, in the order checks run: existence, expiry, usage.
var (
	ErrInvalidCoupon     = domain.NewNotFoundError("coupon", "code")
	ErrExpiredCoupon     = domain.NewValidationError("coupon has expired")
	ErrUsageLimitReached = domain.NewConflictError("coupon usage limit reached")
)

// Coupon is the aggregate root for promotional codes.
type Coupon struct {
	id            uuid.UUID
	code          string
	discountType  DiscountType
	discountValue int64
	expiresAt     time.Time
	currentUsage  int
	maxUsage      int
	active        bool
	createdAt     time.Time
	updatedAt     time.Time
}

// New creates a coupon. Codes are stored uppercase.
func New(code string, discountType DiscountType, discountValue int64, expiresAt time.Time, maxUsage int) (*Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.NewValidationError("coupon code is required")
	}
	if discountType != DiscountPercent && discountType != DiscountFixed {
		return nil, domain.NewValidationError("discount type must be percent or fixed")
	}
	if discountValue <= 0 {
		return nil, domain.NewValidationError("discount value must be positive")
	}
	if discountType == DiscountPercent && discountValue > 100 {
		return nil, domain.NewValidationError("percent discount cannot exceed 100")
	}
	if maxUsage < 1 {
		return nil, domain.NewValidationError("usage limit must be at least 1")
	}

	now := time.Now().UTC()
	return &Coupon{
		id:            uuid.New(),
		code:          code,
		discountType:  discountType,
		discountValue: discountValue,
		expiresAt:     expiresAt,
		currentUsage:  0,
		maxUsage:      maxUsage,
		active:        true,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Coupon from persistence.
func Reconstruct(id uuid.UUID, code string, discountType DiscountType, discountValue int64, expiresAt time.Time, currentUsage, maxUsage int, active bool, createdAt, updatedAt time.Time) *Coupon {
	return &Coupon{
		id: id, code: code, discountType: discountType, discountValue: discountValue,
		expiresAt: expiresAt, currentUsage: currentUsage, maxUsage: maxUsage,
		active: active, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Validate runs the advisory validation checks against "today". The same
// checks are re-run transactionally at commit time; this result can race.
func (c *Coupon) Validate(today time.Time) error {
	if !c.active {
		return ErrInvalidCoupon
	}
	if c.expiresAt.Before(today.Truncate(24 * time.Hour)) {
		return ErrExpiredCoupon
	}
	if c.currentUsage >= c.maxUsage {
		return ErrUsageLimitReached
	}
	return nil
}

// DiscountAmount returns the discount this coupon takes off the given total.
func (c *Coupon) DiscountAmount(total int64) int64 {
	var discount int64
	switch c.discountType {
	case DiscountPercent:
		discount = total * c.discountValue / 100
	case DiscountFixed:
		discount = c.discountValue
	}
	if discount > total {
		discount = total
	}
	return discount
}

// ApplyTo returns the total after this coupon's discount.
func (c *Coupon) ApplyTo(total int64) int64 {
	return total - c.DiscountAmount(total)
}

// Getters.
func (c *Coupon) ID() uuid.UUID              { return c.id }
func (c *Coupon) Code() string               { return c.code }
func (c *Coupon) DiscountType() DiscountType { return c.discountType }
func (c *Coupon) DiscountValue() int64       { return c.discountValue }
func (c *Coupon) ExpiresAt() time.Time       { return c.expiresAt }
func (c *Coupon) CurrentUsage() int          { return c.currentUsage }
func (c *Coupon) MaxUsage() int              { return c.maxUsage }
func (c *Coupon) Active() bool               { return c.active }
func (c *Coupon) CreatedAt() time.Time       { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time       { return c.updatedAt }
