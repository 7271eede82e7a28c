package groupbuy_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-experience/service-reservation/internal/domain/groupbuy"
	"github.com/k-experience/service-reservation/internal/domain/pricing"
	"github.com/k-experience/service-reservation/internal/domain/reservation"
)

func newTestCampaign(t *testing.T) *groupbuy.Campaign {
	t.Helper()
	c, err := groupbuy.New("user-leader", "Leader Kim", "Hanbok Experience", "2026-10-01", 55000, false, "")
	require.NoError(t, err)
	return c
}

func TestNew_LeaderIsFirstParticipant(t *testing.T) {
	c := newTestCampaign(t)

	assert.Equal(t, 1, c.CurrentCount())
	assert.Equal(t, groupbuy.DisplayMaxCount, c.MaxCount())
	assert.Equal(t, groupbuy.StatusActive, c.Status())
	require.Len(t, c.Participants(), 1)
	assert.Equal(t, "user-leader", c.Participants()[0].UserID)
	assert.InDelta(t, 0.03, c.DiscountRate(), 1e-9)
}

func TestNew_GuestCannotLead(t *testing.T) {
	_, err := groupbuy.New("", "Anon", "Hanbok Experience", "2026-10-01", 55000, false, "")
	assert.ErrorIs(t, err, reservation.ErrAuthRequired)

	_, err = groupbuy.New(reservation.GuestUserID, "Anon", "Hanbok Experience", "2026-10-01", 55000, false, "")
	assert.ErrorIs(t, err, reservation.ErrAuthRequired)
}

func TestNew_SecretRequiresAccessCode(t *testing.T) {
	_, err := groupbuy.New("user-leader", "Leader Kim", "Hanbok Experience", "2026-10-01", 55000, true, "")
	assert.Error(t, err)

	c, err := groupbuy.New("user-leader", "Leader Kim", "Hanbok Experience", "2026-10-01", 55000, true, "1234")
	require.NoError(t, err)
	assert.True(t, c.Secret())
}

func TestCanJoin(t *testing.T) {
	c := newTestCampaign(t)

	assert.NoError(t, c.CanJoin("user-2", ""))
	assert.ErrorIs(t, c.CanJoin("", ""), reservation.ErrAuthRequired)
	assert.ErrorIs(t, c.CanJoin(reservation.GuestUserID, ""), reservation.ErrAuthRequired)
	assert.ErrorIs(t, c.CanJoin("user-leader", ""), groupbuy.ErrAlreadyJoined)

	c.Complete()
	assert.ErrorIs(t, c.CanJoin("user-2", ""), groupbuy.ErrCampaignCompleted)
}

func TestCanJoin_SecretAccessCode(t *testing.T) {
	c, err := groupbuy.New("user-leader", "Leader Kim", "Hanbok Experience", "2026-10-01", 55000, true, "1234")
	require.NoError(t, err)

	assert.ErrorIs(t, c.CanJoin("user-2", "9999"), groupbuy.ErrWrongAccessCode)
	assert.ErrorIs(t, c.CanJoin("user-2", ""), groupbuy.ErrWrongAccessCode)
	assert.NoError(t, c.CanJoin("user-2", "1234"))
}

func TestJoin_DiscountCurve(t *testing.T) {
	c := newTestCampaign(t)

	for i := 2; i <= 5; i++ {
		user := fmt.Sprintf("user-%d", i)
		require.NoError(t, c.CanJoin(user, ""))
		c.Join(user, "Guest")
	}

	assert.Equal(t, 5, c.CurrentCount())
	assert.InDelta(t, 0.15, c.DiscountRate(), 1e-9)
}

func TestJoin_PastDisplayMax(t *testing.T) {
	c := newTestCampaign(t)

	// Joins past the advertised maximum still succeed; the discount stays
	// pinned at the cap.
	for i := 2; i <= 14; i++ {
		user := fmt.Sprintf("user-%d", i)
		require.NoError(t, c.CanJoin(user, ""))
		c.Join(user, "Guest")
	}

	assert.Equal(t, 14, c.CurrentCount())
	assert.Greater(t, c.CurrentCount(), c.MaxCount())
	assert.InDelta(t, pricing.MaxDiscountRate, c.DiscountRate(), 1e-9)
}

func TestDeposits(t *testing.T) {
	c := newTestCampaign(t)

	// The leader pays with themselves counted; a joiner pays with
	// themselves included on top of the current count.
	assert.Equal(t, pricing.DepositAmount(55000, 1), c.LeaderDeposit())
	assert.Equal(t, pricing.DepositAmount(55000, 2), c.JoinDeposit())

	c.Join("user-2", "Guest")
	assert.Equal(t, pricing.DepositAmount(55000, 3), c.JoinDeposit())
}

func TestExpiredAsOf(t *testing.T) {
	c := newTestCampaign(t)

	past := mustDate(t, "2026-10-02")
	sameDay := mustDate(t, "2026-10-01")
	before := mustDate(t, "2026-09-30")

	assert.True(t, c.ExpiredAsOf(past))
	assert.False(t, c.ExpiredAsOf(sameDay), "visit day itself is not expired")
	assert.False(t, c.ExpiredAsOf(before))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(reservation.DateLayout, s)
	require.NoError(t, err)
	return d
}
