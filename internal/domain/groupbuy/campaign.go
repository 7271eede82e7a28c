package groupbuy

import (
	"time"

	"github.com/google/uuid"

	"github.com/k-experience/service-reservation/internal/domain/pricing"
	"github.com/k-experience/service-reservation/internal/domain/reservation"
	"github.com/k-experience/service-reservation/internal/platform/domain"
)

// Status is the campaign lifecycle state. The transition is one-way:
// active campaigns whose visit date has passed are swept to completed.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// DisplayMaxCount is the advertised participant count at which the discount
// curve tops out. It is display-only: joins past it are accepted, the
// discount just stays capped.
const DisplayMaxCount = 10

var (
	ErrAlreadyJoined     = domain.NewConflictError("you have already joined this campaign")
	ErrWrongAccessCode   = domain.NewUnauthorizedError("incorrect access code for secret campaign")
	ErrCampaignCompleted = domain.NewInvalidStateError(string(StatusCompleted), string(StatusActive))
)

// Participant is one joined member of a campaign.
type Participant struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// Campaign is the aggregate root for a group-buy (social commerce) unit.
type Campaign struct {
	id           uuid.UUID
	productName  string
	unitPrice    int64
	currentCount int
	maxCount     int
	leaderID     string
	participants []Participant
	visitDate    string
	secret       bool
	accessCode   string
	status       Status
	createdAt    time.Time
	updatedAt    time.Time
}

// New creates a campaign led by the given user. The leader counts as the
// first participant.
func New(leaderID, leaderName, productName, visitDate string, unitPrice int64, secret bool, accessCode string) (*Campaign, error) {
	if leaderID == "" || leaderID == reservation.GuestUserID {
		return nil, reservation.ErrAuthRequired
	}
	if productName == "" {
		return nil, domain.NewValidationError("product name is required")
	}
	if _, err := time.Parse(reservation.DateLayout, visitDate); err != nil {
		return nil, domain.NewValidationError("visit date must be formatted YYYY-MM-DD")
	}
	if unitPrice < 0 {
		return nil, domain.NewValidationError("unit price cannot be negative")
	}
	if secret && accessCode == "" {
		return nil, domain.NewValidationError("secret campaigns require an access code")
	}

	now := time.Now().UTC()
	return &Campaign{
		id:           uuid.New(),
		productName:  productName,
		unitPrice:    unitPrice,
		currentCount: 1,
		maxCount:     DisplayMaxCount,
		leaderID:     leaderID,
		participants: []Participant{{UserID: leaderID, Name: leaderName, JoinedAt: now}},
		visitDate:    visitDate,
		secret:       secret,
		accessCode:   accessCode,
		status:       StatusActive,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a Campaign from persistence.
func Reconstruct(id uuid.UUID, productName string, unitPrice int64, currentCount, maxCount int, leaderID string, participants []Participant, visitDate string, secret bool, accessCode string, status Status, createdAt, updatedAt time.Time) *Campaign {
	return &Campaign{
		id: id, productName: productName, unitPrice: unitPrice,
		currentCount: currentCount, maxCount: maxCount, leaderID: leaderID,
		participants: participants, visitDate: visitDate,
		secret: secret, accessCode: accessCode, status: status,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// CanJoin validates a prospective participant. There is deliberately no
// capacity check against maxCount.
func (c *Campaign) CanJoin(userID, accessCode string) error {
	if userID == "" || userID == reservation.GuestUserID {
		return reservation.ErrAuthRequired
	}
	if c.status != StatusActive {
		return ErrCampaignCompleted
	}
	for _, p := range c.participants {
		if p.UserID == userID {
			return ErrAlreadyJoined
		}
	}
	if c.secret && c.accessCode != accessCode {
		return ErrWrongAccessCode
	}
	return nil
}

// Join adds the participant and bumps the count. Call CanJoin first.
func (c *Campaign) Join(userID, name string) {
	now := time.Now().UTC()
	c.participants = append(c.participants, Participant{UserID: userID, Name: name, JoinedAt: now})
	c.currentCount++
	c.updatedAt = now
}

// DiscountRate returns the current tiered discount for this campaign.
func (c *Campaign) DiscountRate() float64 {
	return pricing.DiscountRate(c.currentCount)
}

// JoinDeposit is the deposit payable by the next joiner, priced with the
// joiner included in the participant count.
func (c *Campaign) JoinDeposit() int64 {
	return pricing.DepositAmount(c.unitPrice, c.currentCount+1)
}

// LeaderDeposit is the deposit the leader pays on campaign creation.
func (c *Campaign) LeaderDeposit() int64 {
	return pricing.DepositAmount(c.unitPrice, c.currentCount)
}

// Complete transitions the campaign to its terminal state.
func (c *Campaign) Complete() {
	c.status = StatusCompleted
	c.updatedAt = time.Now().UTC()
}

// ExpiredAsOf reports whether the campaign's visit date has passed.
func (c *Campaign) ExpiredAsOf(today time.Time) bool {
	visit, err := time.Parse(reservation.DateLayout, c.visitDate)
	if err != nil {
		return false
	}
	return visit.Before(today.Truncate(24 * time.Hour))
}

// Getters.
func (c *Campaign) ID() uuid.UUID              { return c.id }
func (c *Campaign) ProductName() string        { return c.productName }
func (c *Campaign) UnitPrice() int64           { return c.unitPrice }
func (c *Campaign) CurrentCount() int          { return c.currentCount }
func (c *Campaign) MaxCount() int              { return c.maxCount }
func (c *Campaign) LeaderID() string           { return c.leaderID }
func (c *Campaign) Participants() []Participant { return c.participants }
func (c *Campaign) VisitDate() string          { return c.visitDate }
func (c *Campaign) Secret() bool               { return c.secret }
func (c *Campaign) AccessCode() string         { return c.accessCode }
func (c *Campaign) Status() Status             { return c.status }
func (c *Campaign) CreatedAt() time.Time       { return c.createdAt }
func (c *Campaign) UpdatedAt() time.Time       { return c.updatedAt }
