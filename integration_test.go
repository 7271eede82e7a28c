//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-experience/service-reservation/internal/application"
	"github.com/k-experience/service-reservation/internal/domain/coupon"
	"github.com/k-experience/service-reservation/internal/domain/reservation"
	"github.com/k-experience/service-reservation/internal/events"
)

// TestCreateReservation_FreshDate verifies the happy path: a reservation
// for a date with no counter yet lazily creates the counter, commits the
// headcount, and publishes a ReservationConfirmedEvent.
func TestCreateReservation_FreshDate(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	const date = "2026-10-01"
	ctx := context.Background()

	dto, err := stack.Reservations.CreateReservation(ctx, createRequest(date, 2))
	require.NoError(t, err)
	assert.Equal(t, string(reservation.StatusConfirmed), dto.Status)

	inv := inventoryRow(t, infra.DB, date)
	assert.Equal(t, 2, inv.CurrentCount)
	assert.Equal(t, 50, inv.MaxCapacity)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicReservationEvents,
		events.ReservationConfirmed, 15*time.Second)

	var confirmed events.ReservationConfirmedEvent
	require.NoError(t, ce.ParseData(&confirmed))
	assert.Equal(t, dto.ID, confirmed.ReservationID)
	assert.Equal(t, 2, confirmed.Headcount)
	assert.Equal(t, "visitor@example.com", confirmed.NotifyEmail)
}

// TestCreateReservation_SoldOut verifies that a request exceeding remaining
// capacity rolls back entirely: no reservation row, counter untouched.
func TestCreateReservation_SoldOut(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	const date = "2026-10-02"
	ctx := context.Background()
	seedInventory(t, infra.DB, date, 49, 50)

	_, err := stack.Reservations.CreateReservation(ctx, createRequest(date, 2))
	assert.ErrorIs(t, err, reservation.ErrSoldOut)

	inv := inventoryRow(t, infra.DB, date)
	assert.Equal(t, 49, inv.CurrentCount, "counter must be unchanged after rollback")
	assert.Equal(t, int64(0), reservationCount(t, infra.DB, date))

	// The last seat is still sellable.
	_, err = stack.Reservations.CreateReservation(ctx, createRequest(date, 1))
	require.NoError(t, err)
	assert.Equal(t, 50, inventoryRow(t, infra.DB, date).CurrentCount)
}

// TestCreateReservation_SingleUseCoupon verifies that coupon consumption is
// part of the commit transaction: the second redemption of a max_usage=1
// coupon fails and leaves no trace of the second booking.
func TestCreateReservation_SingleUseCoupon(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	const date = "2026-10-03"
	ctx := context.Background()
	couponID := seedCoupon(t, infra.DB, "ONETIME", 1)

	withCoupon := func(headcount int) application.CreateReservationRequest {
		req := createRequest(date, headcount)
		req.Options.CouponID = couponID.String()
		return req
	}

	_, err := stack.Reservations.CreateReservation(ctx, withCoupon(1))
	require.NoError(t, err)

	_, err = stack.Reservations.CreateReservation(ctx, withCoupon(1))
	assert.ErrorIs(t, err, coupon.ErrUsageLimitReached)

	// Only the first booking exists; its coupon consumption stuck.
	assert.Equal(t, int64(1), reservationCount(t, infra.DB, date))
	assert.Equal(t, 1, inventoryRow(t, infra.DB, date).CurrentCount)

	// A coupon id that matches no row reports invalid, not exhausted.
	req := createRequest(date, 1)
	req.Options.CouponID = uuid.New().String()
	_, err = stack.Reservations.CreateReservation(ctx, req)
	assert.ErrorIs(t, err, coupon.ErrInvalidCoupon)
}

// TestCreateReservation_ConcurrentFirstBooking verifies that two
// simultaneous first reservations for a date with no counter row yet both
// commit: the lazy counter create is race-safe and neither booking is lost.
func TestCreateReservation_ConcurrentFirstBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	const date = "2026-10-05"
	ctx := context.Background()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := createRequest(date, 1)
			req.UserID = fmt.Sprintf("user-conc-%d", n)
			_, err := stack.Reservations.CreateReservation(ctx, req)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), reservationCount(t, infra.DB, date))
	assert.Equal(t, 2, inventoryRow(t, infra.DB, date).CurrentCount)
}

// TestCreateReservation_PaymentFailure verifies the ordering guarantee:
// when capture fails, nothing is written at all.
func TestCreateReservation_PaymentFailure(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	const date = "2026-10-04"
	ctx := context.Background()
	stack.Gateway.FailNext()

	_, err := stack.Reservations.CreateReservation(ctx, createRequest(date, 2))
	assert.ErrorIs(t, err, reservation.ErrPaymentFailed)

	assert.Equal(t, int64(0), reservationCount(t, infra.DB, date))
	var count int64
	infra.DB.Table("inventory_counters").Where("date = ?", date).Count(&count)
	assert.Equal(t, int64(0), count, "no counter row should be created on payment failure")
}

// TestGroupBuy_JoinFlow verifies the campaign lifecycle: leader deposit on
// creation, discount growth on join, and joins past the advertised maximum.
func TestGroupBuy_JoinFlow(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()

	created, err := stack.GroupBuys.CreateCampaign(ctx, "leader-1", application.CreateCampaignRequest{
		ProductName: "Seoul Hanbok Experience",
		UnitPrice:   55000,
		VisitDate:   "2026-11-01",
		LeaderName:  "Leader Kim",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.CurrentCount)

	joined, err := stack.GroupBuys.JoinCampaign(ctx, created.ID, "joiner-1", application.JoinCampaignRequest{
		Name: "Joiner Park",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, joined.CurrentCount)
	assert.InDelta(t, 0.06, joined.DiscountRate, 1e-9)

	// The same user cannot join twice.
	_, err = stack.GroupBuys.JoinCampaign(ctx, created.ID, "joiner-1", application.JoinCampaignRequest{
		Name: "Joiner Park",
	})
	assert.Error(t, err)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicReservationEvents,
		events.GroupBuyJoined, 15*time.Second)

	var evt events.GroupBuyJoinedEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, created.ID, evt.CampaignID)
	assert.Equal(t, "joiner-1", evt.UserID)
}

// TestGroupBuy_ConcurrentJoins verifies that simultaneous joins serialize
// on the campaign row and every increment lands: two joins against a
// 9-member campaign leave it at 11, past the advertised maximum.
func TestGroupBuy_ConcurrentJoins(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	campaignID := seedCampaign(t, infra.DB, "2026-11-02", 9)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := stack.GroupBuys.JoinCampaign(ctx, campaignID, fmt.Sprintf("joiner-conc-%d", n), application.JoinCampaignRequest{
				Name: fmt.Sprintf("Joiner %d", n),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	row := campaignRow(t, infra.DB, campaignID)
	assert.Equal(t, 11, row.CurrentCount, "both joins must land")
	assert.Equal(t, "active", row.Status)

	var participants []map[string]interface{}
	require.NoError(t, json.Unmarshal(row.Participants, &participants))
	assert.Len(t, participants, 11)
}

// TestGroupBuy_SweepCompletesOnlyPastCampaigns verifies the expiry sweep:
// campaigns dated strictly before today transition to completed, while a
// campaign whose visit date is today stays active.
func TestGroupBuy_SweepCompletesOnlyPastCampaigns(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1).Format(reservation.DateLayout)
	today := now.Format(reservation.DateLayout)

	pastID := seedCampaign(t, infra.DB, yesterday, 3)
	currentID := seedCampaign(t, infra.DB, today, 3)

	stack.GroupBuys.SweepExpired(ctx)

	assert.Equal(t, "completed", campaignRow(t, infra.DB, pastID).Status)
	assert.Equal(t, "active", campaignRow(t, infra.DB, currentID).Status)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicReservationEvents,
		events.GroupBuyCompleted, 15*time.Second)

	var evt events.GroupBuyCompletedEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, int64(1), evt.CompletedCount)
}
