package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/k-experience/service-reservation/internal/cache"
	affiliateDomain "github.com/k-experience/service-reservation/internal/domain/affiliate"
	resDomain "github.com/k-experience/service-reservation/internal/domain/reservation"
	"github.com/k-experience/service-reservation/internal/platform/domain"
	"github.com/k-experience/service-reservation/internal/saga"
)

// GuestRequest carries per-guest details at checkout.
type GuestRequest struct {
	Name   string `json:"name" binding:"required"`
	Gender string `json:"gender"`
	Phone  string `json:"phone"`
}

// ReservationOptionsRequest is the options bag of a create request.
type ReservationOptionsRequest struct {
	PaymentType   string         `json:"paymentType" binding:"required"`
	Guests        []GuestRequest `json:"guests"`
	CouponID      string         `json:"couponId"`
	AffiliateCode string         `json:"affiliateCode"`
	GuestEmail    string         `json:"guestEmail"`
}

// CreateReservationRequest is the reservation creation call input.
type CreateReservationRequest struct {
	UserID      string                    `json:"userId"`
	ProductName string                    `json:"productName" binding:"required"`
	Date        string                    `json:"date" binding:"required"`
	PeopleCount int                       `json:"peopleCount" binding:"required,gte=1"`
	TotalPrice  int64                     `json:"totalPrice" binding:"gte=0"`
	Options     ReservationOptionsRequest `json:"options" binding:"required"`
}

// ReservationDTO is the API representation of a reservation.
type ReservationDTO struct {
	ID          uuid.UUID                `json:"id"`
	UserID      string                   `json:"user_id"`
	ProductName string                   `json:"product_name"`
	VisitDate   string                   `json:"visit_date"`
	Headcount   int                      `json:"headcount"`
	TotalPrice  int64                    `json:"total_price"`
	Options     resDomain.Options        `json:"options"`
	Status      string                   `json:"status"`
	Survey      *resDomain.SurveyAnswers `json:"survey,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// AvailabilityDTO is the advisory availability pair for a date.
type AvailabilityDTO struct {
	Available int `json:"available"`
	Total     int `json:"total"`
}

// ReservationService orchestrates the booking use cases.
type ReservationService struct {
	repo       resDomain.Repository
	sagaSvc    *saga.BookingSagaService
	affiliates affiliateDomain.Repository
	cache      *cache.AvailabilityCache
	logger     *zap.Logger
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	repo resDomain.Repository,
	sagaSvc *saga.BookingSagaService,
	affiliates affiliateDomain.Repository,
	availabilityCache *cache.AvailabilityCache,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		repo:       repo,
		sagaSvc:    sagaSvc,
		affiliates: affiliates,
		cache:      availabilityCache,
		logger:     logger,
	}
}

// CreateReservation runs the full booking flow: validate, capture payment,
// commit atomically, then best-effort affiliate attribution. The capacity
// and coupon checks happen authoritatively inside the commit transaction.
func (s *ReservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*ReservationDTO, error) {
	options, err := buildOptions(req)
	if err != nil {
		return nil, err
	}

	res, err := resDomain.New(req.UserID, req.ProductName, req.Date, req.PeopleCount, req.TotalPrice, options)
	if err != nil {
		return nil, err
	}

	buyerName := ""
	if len(options.Guests) > 0 {
		buyerName = options.Guests[0].Name
	}

	if err := s.sagaSvc.CreateReservationSaga(ctx, res, options.GuestEmail, buyerName); err != nil {
		s.logger.Error("reservation flow failed",
			zap.String("date", req.Date),
			zap.Int("headcount", req.PeopleCount),
			zap.Error(err),
		)
		return nil, err
	}

	s.cache.Invalidate(ctx, res.VisitDate())

	// Post-commit, best-effort. A failure here is logged and never blocks
	// or reverses the reservation.
	if code := options.AffiliateCode; code != "" {
		if err := s.affiliates.RecordSale(ctx, code, res.TotalPrice()); err != nil {
			s.logger.Warn("affiliate attribution failed",
				zap.String("code", code),
				zap.String("reservation_id", res.ID().String()),
				zap.Error(err),
			)
		}
	}

	dto := toReservationDTO(res)
	return &dto, nil
}

// GetAvailability returns the advisory availability for a date. Cached
// briefly for display; non-authoritative by design.
func (s *ReservationService) GetAvailability(ctx context.Context, date string) (*AvailabilityDTO, error) {
	if _, err := time.Parse(resDomain.DateLayout, date); err != nil {
		return nil, domain.NewValidationError("date must be formatted YYYY-MM-DD")
	}

	if cached, ok := s.cache.Get(ctx, date); ok {
		return &AvailabilityDTO{Available: cached.Available, Total: cached.Total}, nil
	}

	counter, err := s.repo.InventoryForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, date, cache.Availability{
		Available: counter.Available(),
		Total:     counter.MaxCapacity,
	})
	return &AvailabilityDTO{Available: counter.Available(), Total: counter.MaxCapacity}, nil
}

// GetReservation retrieves a reservation by ID.
func (s *ReservationService) GetReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toReservationDTO(res)
	return &dto, nil
}

// ListUserReservations returns a user's reservations.
func (s *ReservationService) ListUserReservations(ctx context.Context, userID string) ([]ReservationDTO, error) {
	reservations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]ReservationDTO, len(reservations))
	for i, r := range reservations {
		dtos[i] = toReservationDTO(r)
	}
	return dtos, nil
}

// SubmitSurvey records post-visit survey answers on a reservation.
func (s *ReservationService) SubmitSurvey(ctx context.Context, id uuid.UUID, rating int, comments string) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.SubmitSurvey(rating, comments); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	dto := toReservationDTO(res)
	return &dto, nil
}

// --- Admin methods ---

// ReservationStatsDTO holds booking statistics for the admin dashboard.
type ReservationStatsDTO struct {
	TotalRevenue      int64            `json:"total_revenue"`
	TotalReservations int64            `json:"total_reservations"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// ListAllReservations returns a paginated list of all reservations (admin).
func (s *ReservationService) ListAllReservations(ctx context.Context, page, limit int) ([]ReservationDTO, int64, error) {
	reservations, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]ReservationDTO, len(reservations))
	for i, r := range reservations {
		dtos[i] = toReservationDTO(r)
	}
	return dtos, total, nil
}

// UpdateStatus applies an admin-driven status transition.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.TransitionTo(resDomain.Status(status)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}

	if res.Status() == resDomain.StatusCancelled {
		s.sagaSvc.PublishCancelled(ctx, res.ID(), res.UserID())
	}

	dto := toReservationDTO(res)
	return &dto, nil
}

// GetStats returns aggregate booking statistics (admin).
func (s *ReservationService) GetStats(ctx context.Context) (*ReservationStatsDTO, error) {
	revenue, counts, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	return &ReservationStatsDTO{
		TotalRevenue:      revenue,
		TotalReservations: total,
		ByStatus:          counts,
	}, nil
}

func buildOptions(req CreateReservationRequest) (resDomain.Options, error) {
	if len(req.Options.Guests) > 0 && len(req.Options.Guests) != req.PeopleCount {
		return resDomain.Options{}, domain.NewValidationError("guest details must be provided for every guest")
	}

	guests := make([]resDomain.Guest, len(req.Options.Guests))
	for i, g := range req.Options.Guests {
		if g.Name == "" {
			return resDomain.Options{}, domain.NewValidationError("guest name is required")
		}
		guests[i] = resDomain.Guest{Name: g.Name, Gender: g.Gender, Phone: g.Phone}
	}

	var couponID *uuid.UUID
	if req.Options.CouponID != "" {
		id, err := uuid.Parse(req.Options.CouponID)
		if err != nil {
			return resDomain.Options{}, domain.NewValidationError("invalid coupon id")
		}
		couponID = &id
	}

	return resDomain.Options{
		PaymentType:   req.Options.PaymentType,
		Guests:        guests,
		CouponID:      couponID,
		AffiliateCode: req.Options.AffiliateCode,
		GuestEmail:    req.Options.GuestEmail,
	}, nil
}

func toReservationDTO(r *resDomain.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:          r.ID(),
		UserID:      r.UserID(),
		ProductName: r.ProductName(),
		VisitDate:   r.VisitDate(),
		Headcount:   r.Headcount(),
		TotalPrice:  r.TotalPrice(),
		Options:     r.Options(),
		Status:      string(r.Status()),
		Survey:      r.Survey(),
		CreatedAt:   r.CreatedAt(),
	}
}
