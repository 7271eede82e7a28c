package reservation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-experience/service-reservation/internal/domain/reservation"
)

func newTestReservation(t *testing.T) *reservation.Reservation {
	t.Helper()
	r, err := reservation.New("user-1", "Hanbok Experience", "2026-10-01", 2, 110000, reservation.Options{
		PaymentType: "card",
		Guests: []reservation.Guest{
			{Name: "Kim Minjun", Gender: "male"},
			{Name: "Lee Seoyeon", Gender: "female"},
		},
	})
	require.NoError(t, err)
	return r
}

func TestNew(t *testing.T) {
	r := newTestReservation(t)

	assert.Equal(t, reservation.StatusConfirmed, r.Status(), "reservations are created post-payment, already confirmed")
	assert.Equal(t, 2, r.Headcount())
	assert.Nil(t, r.Survey())
}

func TestNew_EmptyUserBecomesGuest(t *testing.T) {
	r, err := reservation.New("", "Hanbok Experience", "2026-10-01", 1, 55000, reservation.Options{PaymentType: "card"})
	require.NoError(t, err)
	assert.Equal(t, reservation.GuestUserID, r.UserID())
}

func TestNew_Validation(t *testing.T) {
	opts := reservation.Options{PaymentType: "card"}

	_, err := reservation.New("u", "", "2026-10-01", 1, 55000, opts)
	assert.Error(t, err)

	_, err = reservation.New("u", "Hanbok Experience", "01/10/2026", 1, 55000, opts)
	assert.Error(t, err)

	_, err = reservation.New("u", "Hanbok Experience", "2026-10-01", 0, 55000, opts)
	assert.Error(t, err)

	_, err = reservation.New("u", "Hanbok Experience", "2026-10-01", 1, -1, opts)
	assert.Error(t, err)
}

func TestTransitionTo(t *testing.T) {
	r := newTestReservation(t)

	require.NoError(t, r.TransitionTo(reservation.StatusCompleted))
	assert.Equal(t, reservation.StatusCompleted, r.Status())

	// Terminal states cannot be left.
	err := r.TransitionTo(reservation.StatusConfirmed)
	assert.Error(t, err)
	assert.Equal(t, reservation.StatusCompleted, r.Status())
}

func TestTransitionTo_Cancelled(t *testing.T) {
	r := newTestReservation(t)

	require.NoError(t, r.TransitionTo(reservation.StatusCancelled))
	assert.Error(t, r.TransitionTo(reservation.StatusPending))
}

func TestTransitionTo_UnknownStatus(t *testing.T) {
	r := newTestReservation(t)
	assert.Error(t, r.TransitionTo("shipped"))
}

func TestSubmitSurvey(t *testing.T) {
	r := newTestReservation(t)

	require.NoError(t, r.SubmitSurvey(5, "Wonderful day in Seoul"))
	require.NotNil(t, r.Survey())
	assert.Equal(t, 5, r.Survey().Rating)

	// Only one submission allowed.
	assert.Error(t, r.SubmitSurvey(3, "changed my mind"))
	assert.Equal(t, 5, r.Survey().Rating)
}

func TestSubmitSurvey_RatingRange(t *testing.T) {
	r := newTestReservation(t)
	assert.Error(t, r.SubmitSurvey(0, ""))
	assert.Error(t, r.SubmitSurvey(6, ""))
	assert.Nil(t, r.Survey())
}

func TestNotifyEmail(t *testing.T) {
	r, err := reservation.New("", "Hanbok Experience", "2026-10-01", 1, 55000, reservation.Options{
		PaymentType: "card",
		GuestEmail:  "visitor@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "visitor@example.com", r.NotifyEmail())
}
