package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	affiliateDomain "github.com/k-experience/service-reservation/internal/domain/affiliate"
)

// CreatePartnerRequest holds data to register an affiliate partner (admin).
type CreatePartnerRequest struct {
	Code           string  `json:"code" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	CommissionRate float64 `json:"commission_rate"`
}

// PartnerDTO is the API representation of an affiliate partner.
type PartnerDTO struct {
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Clicks         int64     `json:"clicks"`
	Sales          int64     `json:"sales"`
	TotalRevenue   int64     `json:"total_revenue"`
	CommissionRate float64   `json:"commission_rate"`
	Commission     int64     `json:"commission"`
	CreatedAt      time.Time `json:"created_at"`
}

// AffiliateService handles referral attribution. Every operation here is
// best-effort by contract: counter updates tolerate lost updates and
// failures never surface to the end user.
type AffiliateService struct {
	repo   affiliateDomain.Repository
	logger *zap.Logger
}

// NewAffiliateService creates a new AffiliateService.
func NewAffiliateService(repo affiliateDomain.Repository, logger *zap.Logger) *AffiliateService {
	return &AffiliateService{repo: repo, logger: logger}
}

// TrackClick increments a partner's click counter. Called whenever a visit
// carries a ?ref= code, regardless of whether a reservation ever happens.
// Always succeeds from the caller's perspective.
func (s *AffiliateService) TrackClick(ctx context.Context, code string) {
	if code == "" {
		return
	}
	if err := s.repo.IncrementClicks(ctx, code); err != nil {
		s.logger.Warn("click tracking failed", zap.String("code", code), zap.Error(err))
	}
}

// CreatePartner registers a new affiliate partner (admin only).
func (s *AffiliateService) CreatePartner(ctx context.Context, req CreatePartnerRequest) (*PartnerDTO, error) {
	rate := req.CommissionRate
	if rate == 0 {
		rate = 0.1
	}

	p, err := affiliateDomain.New(req.Code, req.Name, rate)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("affiliate partner created", zap.String("code", p.Code()))
	dto := toPartnerDTO(p)
	return &dto, nil
}

// GetPartnerStats returns a partner's counters (admin).
func (s *AffiliateService) GetPartnerStats(ctx context.Context, code string) (*PartnerDTO, error) {
	p, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	dto := toPartnerDTO(p)
	return &dto, nil
}

func toPartnerDTO(p *affiliateDomain.Partner) PartnerDTO {
	return PartnerDTO{
		Code:           p.Code(),
		Name:           p.Name(),
		Clicks:         p.Clicks(),
		Sales:          p.Sales(),
		TotalRevenue:   p.TotalRevenue(),
		CommissionRate: p.CommissionRate(),
		Commission:     p.Commission(),
		CreatedAt:      p.CreatedAt(),
	}
}
