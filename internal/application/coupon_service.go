package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	couponDomain "github.com/k-experience/service-reservation/internal/domain/coupon"
	"github.com/k-experience/service-reservation/internal/platform/domain"
)

// CreateCouponRequest holds data to create a coupon (admin).
type CreateCouponRequest struct {
	Code          string `json:"code" binding:"required"`
	DiscountType  string `json:"discount_type" binding:"required"`
	DiscountValue int64  `json:"discount_value" binding:"required"`
	ExpiresAt     string `json:"expires_at" binding:"required"`
	MaxUsage      int    `json:"max_usage" binding:"required"`
}

// ValidateCouponRequest is the advisory validation input.
type ValidateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// CouponDTO is the API representation of a coupon.
type CouponDTO struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue int64     `json:"discount_value"`
	ExpiresAt     time.Time `json:"expires_at"`
	CurrentUsage  int       `json:"current_usage"`
	MaxUsage      int       `json:"max_usage"`
	Active        bool      `json:"active"`
}

// CouponValidationDTO is the advisory validation result, returning the
// discount type and value for client-side price preview. It can race and is
// always re-validated inside the commit transaction.
type CouponValidationDTO struct {
	Valid   bool       `json:"valid"`
	ID      *uuid.UUID `json:"id,omitempty"`
	Type    string     `json:"type,omitempty"`
	Value   int64      `json:"value,omitempty"`
	Message string     `json:"message,omitempty"`
}

// CouponService handles coupon use cases.
type CouponService struct {
	repo   couponDomain.Repository
	logger *zap.Logger
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo couponDomain.Repository, logger *zap.Logger) *CouponService {
	return &CouponService{repo: repo, logger: logger}
}

// CreateCoupon creates a new coupon (admin only).
func (s *CouponService) CreateCoupon(ctx context.Context, req CreateCouponRequest) (*CouponDTO, error) {
	expiresAt, err := time.Parse("2006-01-02", req.ExpiresAt)
	if err != nil {
		return nil, domain.NewValidationError("expires_at must be formatted YYYY-MM-DD")
	}

	c, err := couponDomain.New(
		req.Code,
		couponDomain.DiscountType(req.DiscountType),
		req.DiscountValue,
		expiresAt,
		req.MaxUsage,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("coupon created", zap.String("code", c.Code()))
	dto := toCouponDTO(c)
	return &dto, nil
}

// ValidateCoupon runs the advisory checks: existence, expiry, usage — in
// that order. The result is for UI feedback before checkout only.
func (s *CouponService) ValidateCoupon(ctx context.Context, req ValidateCouponRequest) (*CouponValidationDTO, error) {
	c, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &CouponValidationDTO{Valid: false, Message: "coupon not found"}, nil
		}
		return nil, err
	}

	if err := c.Validate(time.Now().UTC()); err != nil {
		return &CouponValidationDTO{Valid: false, Message: err.Error()}, nil
	}

	id := c.ID()
	return &CouponValidationDTO{
		Valid: true,
		ID:    &id,
		Type:  string(c.DiscountType()),
		Value: c.DiscountValue(),
	}, nil
}

// ListActiveCoupons returns all currently redeemable coupons (admin).
func (s *CouponService) ListActiveCoupons(ctx context.Context) ([]CouponDTO, error) {
	coupons, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]CouponDTO, len(coupons))
	for i, c := range coupons {
		dtos[i] = toCouponDTO(c)
	}
	return dtos, nil
}

func toCouponDTO(c *couponDomain.Coupon) CouponDTO {
	return CouponDTO{
		ID:            c.ID(),
		Code:          c.Code(),
		DiscountType:  string(c.DiscountType()),
		DiscountValue: c.DiscountValue(),
		ExpiresAt:     c.ExpiresAt(),
		CurrentUsage:  c.CurrentUsage(),
		MaxUsage:      c.MaxUsage(),
		Active:        c.Active(),
	}
}
