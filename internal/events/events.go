// Package events defines the closed set of messages this service publishes
// and consumes. Cross-component notification goes through these types only,
// so every consumer is statically enumerable.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicReservationEvents = "reservation.events"
)

// Event types.
const (
	ReservationConfirmed = "reservation.confirmed"
	ReservationCancelled = "reservation.cancelled"
	GroupBuyJoined       = "groupbuy.joined"
	GroupBuyCompleted    = "groupbuy.completed"
)

// ReservationConfirmedEvent is published after the atomic reservation commit.
type ReservationConfirmedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	ProductName   string    `json:"product_name"`
	VisitDate     string    `json:"visit_date"`
	Headcount     int       `json:"headcount"`
	TotalPrice    int64     `json:"total_price"`
	NotifyEmail   string    `json:"notify_email,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReservationCancelledEvent is published on an admin cancellation.
type ReservationCancelledEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// GroupBuyJoinedEvent is published after a participant joins a campaign.
type GroupBuyJoinedEvent struct {
	CampaignID   uuid.UUID `json:"campaign_id"`
	UserID       string    `json:"user_id"`
	CurrentCount int       `json:"current_count"`
	DiscountRate float64   `json:"discount_rate"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// GroupBuyCompletedEvent is published by the expiry sweep.
type GroupBuyCompletedEvent struct {
	CompletedCount int64     `json:"completed_count"`
	OccurredAt     time.Time `json:"occurred_at"`
}
