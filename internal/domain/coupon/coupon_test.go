package coupon_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-experience/service-reservation/internal/domain/coupon"
)

func newTestCoupon(t *testing.T, discountType coupon.DiscountType, value int64, expiresAt time.Time, maxUsage int) *coupon.Coupon {
	t.Helper()
	c, err := coupon.New("WELCOME10", discountType, value, expiresAt, maxUsage)
	require.NoError(t, err)
	return c
}

func TestNew_NormalizesCode(t *testing.T) {
	c, err := coupon.New("  summer24 ", coupon.DiscountFixed, 5000, time.Now().AddDate(0, 1, 0), 10)
	require.NoError(t, err)
	assert.Equal(t, "SUMMER24", c.Code())
	assert.True(t, c.Active())
	assert.Zero(t, c.CurrentUsage())
}

func TestNew_Validation(t *testing.T) {
	expiry := time.Now().AddDate(0, 1, 0)

	_, err := coupon.New("", coupon.DiscountFixed, 5000, expiry, 10)
	assert.Error(t, err)

	_, err = coupon.New("X", "bogus", 5000, expiry, 10)
	assert.Error(t, err)

	_, err = coupon.New("X", coupon.DiscountPercent, 0, expiry, 10)
	assert.Error(t, err)

	_, err = coupon.New("X", coupon.DiscountPercent, 101, expiry, 10)
	assert.Error(t, err)

	_, err = coupon.New("X", coupon.DiscountFixed, 5000, expiry, 0)
	assert.Error(t, err)
}

func TestValidate_ChecksRunInOrder(t *testing.T) {
	now := time.Now().UTC()

	// Inactive wins over everything else.
	c := coupon.Reconstruct(
		newTestCoupon(t, coupon.DiscountPercent, 10, now.AddDate(0, -1, 0), 1).ID(),
		"WELCOME10", coupon.DiscountPercent, 10,
		now.AddDate(0, -1, 0), 1, 1, false, now, now,
	)
	assert.ErrorIs(t, c.Validate(now), coupon.ErrInvalidCoupon)

	// Expired beats exhausted.
	c = coupon.Reconstruct(c.ID(), "WELCOME10", coupon.DiscountPercent, 10,
		now.AddDate(0, -1, 0), 1, 1, true, now, now)
	assert.ErrorIs(t, c.Validate(now), coupon.ErrExpiredCoupon)

	// Exhausted but current.
	c = coupon.Reconstruct(c.ID(), "WELCOME10", coupon.DiscountPercent, 10,
		now.AddDate(0, 1, 0), 1, 1, true, now, now)
	assert.ErrorIs(t, c.Validate(now), coupon.ErrUsageLimitReached)

	// Healthy coupon validates.
	c = coupon.Reconstruct(c.ID(), "WELCOME10", coupon.DiscountPercent, 10,
		now.AddDate(0, 1, 0), 0, 1, true, now, now)
	assert.NoError(t, c.Validate(now))
}

func TestValidate_ExpiryIsDateGranular(t *testing.T) {
	now := time.Now().UTC()
	// A coupon expiring "today" is still redeemable today.
	c := newTestCoupon(t, coupon.DiscountPercent, 10, now.Truncate(24*time.Hour), 5)
	assert.NoError(t, c.Validate(now))
}

func TestDiscountAmount_Percent(t *testing.T) {
	c := newTestCoupon(t, coupon.DiscountPercent, 10, time.Now().AddDate(0, 1, 0), 5)
	assert.Equal(t, int64(100000), c.DiscountAmount(1000000))
	assert.Equal(t, int64(900000), c.ApplyTo(1000000))
}

func TestDiscountAmount_Fixed(t *testing.T) {
	c := newTestCoupon(t, coupon.DiscountFixed, 5000, time.Now().AddDate(0, 1, 0), 5)
	assert.Equal(t, int64(5000), c.DiscountAmount(60000))
	assert.Equal(t, int64(55000), c.ApplyTo(60000))
}

func TestDiscountAmount_NeverExceedsTotal(t *testing.T) {
	c := newTestCoupon(t, coupon.DiscountFixed, 50000, time.Now().AddDate(0, 1, 0), 5)
	assert.Equal(t, int64(30000), c.DiscountAmount(30000))
	assert.Equal(t, int64(0), c.ApplyTo(30000))
}
