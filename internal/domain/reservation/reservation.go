package reservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/k-experience/service-reservation/internal/platform/domain"
)

// Status represents the lifecycle state of a reservation. Reservations are
// never deleted, only status-transitioned.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// GuestUserID is the identity used for guest checkout.
const GuestUserID = "guest"

// DateLayout is the calendar-day key format used for visit dates and
// inventory counters. No time-of-day granularity exists in this domain.
const DateLayout = "2006-01-02"

// Errors surfaced by reservation flows.
var (
	ErrSoldOut       = domain.NewConflictError("requested headcount exceeds remaining capacity for this date")
	ErrPaymentFailed = domain.NewConflictError("payment capture did not succeed")
	ErrAuthRequired  = domain.NewUnauthorizedError("this action requires a signed-in account")
)

// Guest holds per-guest details captured at checkout.
type Guest struct {
	Name   string `json:"name"`
	Gender string `json:"gender,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// Options is the free-form options bag attached to a reservation.
type Options struct {
	PaymentType   string     `json:"payment_type"`
	Guests        []Guest    `json:"guests,omitempty"`
	CouponID      *uuid.UUID `json:"coupon_id,omitempty"`
	AffiliateCode string     `json:"affiliate_code,omitempty"`
	GuestEmail    string     `json:"guest_email,omitempty"`
}

// SurveyAnswers holds the post-visit survey submission.
type SurveyAnswers struct {
	Rating      int       `json:"rating"`
	Comments    string    `json:"comments,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Reservation is the aggregate root for a single booking.
type Reservation struct {
	id          uuid.UUID
	userID      string
	productName string
	visitDate   string
	headcount   int
	totalPrice  int64
	options     Options
	status      Status
	survey      *SurveyAnswers
	createdAt   time.Time
	updatedAt   time.Time
}

// New validates the payload and builds a reservation in confirmed state.
// Callers only construct a reservation after payment capture succeeds.
func New(userID, productName, visitDate string, headcount int, totalPrice int64, options Options) (*Reservation, error) {
	if userID == "" {
		userID = GuestUserID
	}
	if productName == "" {
		return nil, domain.NewValidationError("product name is required")
	}
	if _, err := time.Parse(DateLayout, visitDate); err != nil {
		return nil, domain.NewValidationError("visit date must be formatted YYYY-MM-DD")
	}
	if headcount < 1 {
		return nil, domain.NewValidationError("headcount must be at least 1")
	}
	if totalPrice < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}

	now := time.Now().UTC()
	return &Reservation{
		id:          uuid.New(),
		userID:      userID,
		productName: productName,
		visitDate:   visitDate,
		headcount:   headcount,
		totalPrice:  totalPrice,
		options:     options,
		status:      StatusConfirmed,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a Reservation from persistence.
func Reconstruct(id uuid.UUID, userID, productName, visitDate string, headcount int, totalPrice int64, options Options, status Status, survey *SurveyAnswers, createdAt, updatedAt time.Time) *Reservation {
	return &Reservation{
		id: id, userID: userID, productName: productName, visitDate: visitDate,
		headcount: headcount, totalPrice: totalPrice, options: options,
		status: status, survey: survey, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// TransitionTo applies an admin-driven status change. Terminal states
// (completed, cancelled) cannot be left.
func (r *Reservation) TransitionTo(next Status) error {
	switch next {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
	default:
		return domain.NewValidationError("unknown reservation status: " + string(next))
	}
	if r.status == StatusCompleted || r.status == StatusCancelled {
		return domain.NewInvalidStateError(string(r.status), string(next))
	}
	r.status = next
	r.updatedAt = time.Now().UTC()
	return nil
}

// SubmitSurvey attaches post-visit survey answers. A survey can only be
// submitted once.
func (r *Reservation) SubmitSurvey(rating int, comments string) error {
	if r.survey != nil {
		return domain.NewConflictError("survey already submitted for this reservation")
	}
	if rating < 1 || rating > 5 {
		return domain.NewValidationError("survey rating must be between 1 and 5")
	}
	r.survey = &SurveyAnswers{
		Rating:      rating,
		Comments:    comments,
		SubmittedAt: time.Now().UTC(),
	}
	r.updatedAt = time.Now().UTC()
	return nil
}

// NotifyEmail returns the address confirmation email should go to, preferring
// the guest email captured at checkout.
func (r *Reservation) NotifyEmail() string {
	return r.options.GuestEmail
}

// Getters.
func (r *Reservation) ID() uuid.UUID          { return r.id }
func (r *Reservation) UserID() string         { return r.userID }
func (r *Reservation) ProductName() string    { return r.productName }
func (r *Reservation) VisitDate() string      { return r.visitDate }
func (r *Reservation) Headcount() int         { return r.headcount }
func (r *Reservation) TotalPrice() int64      { return r.totalPrice }
func (r *Reservation) Options() Options       { return r.options }
func (r *Reservation) Status() Status         { return r.status }
func (r *Reservation) Survey() *SurveyAnswers { return r.survey }
func (r *Reservation) CreatedAt() time.Time   { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time   { return r.updatedAt }
